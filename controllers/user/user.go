package user

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"nexusbet/feed"
	"nexusbet/helpers"
	"nexusbet/insights"
	"nexusbet/models"
	"nexusbet/monitoring"
	"nexusbet/store"
)

type Controller struct {
	db          *gorm.DB
	accounts    *store.AccountStore
	ledger      *store.Ledger
	bets        *store.BetStore
	withdrawals *store.WithdrawalQueue
	cache       *feed.OddsCache
	oracle      *insights.Client
}

func New(
	db *gorm.DB,
	accounts *store.AccountStore,
	ledger *store.Ledger,
	bets *store.BetStore,
	withdrawals *store.WithdrawalQueue,
	cache *feed.OddsCache,
	oracle *insights.Client,
) *Controller {
	return &Controller{
		db:          db,
		accounts:    accounts,
		ledger:      ledger,
		bets:        bets,
		withdrawals: withdrawals,
		cache:       cache,
		oracle:      oracle,
	}
}

func currentUser(c *fiber.Ctx) models.User {
	user, _ := c.Locals("user").(models.User)
	return user
}

func (ctl *Controller) Me(c *fiber.Ctx) error {
	user, err := ctl.accounts.Get(currentUser(c).Username)
	if err != nil {
		return helpers.JSONErrorStatus(c, fiber.StatusNotFound, "USER_NOT_FOUND")
	}
	return helpers.JSONSuccess(c, "Profile", helpers.Profile(user))
}

type DepositRequest struct {
	Amount float64 `json:"amount"`
	Method string  `json:"method"`
}

func (ctl *Controller) Deposit(c *fiber.Ctx) error {
	var req DepositRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	user, err := ctl.accounts.Deposit(currentUser(c).Username, helpers.ToPaise(req.Amount), req.Method)
	if err != nil {
		if errors.Is(err, store.ErrInvalidAmount) {
			return helpers.JSONError(c, "VALID_AMOUNT_REQUIRED")
		}
		return helpers.JSONError(c, "FAILED_TO_DEPOSIT")
	}
	return helpers.JSONSuccess(c, "Deposit credited", helpers.Profile(user))
}

type PlaceBetRequest struct {
	Selections []store.Selection `json:"selections"`
	Stake      float64           `json:"stake"`
}

func (ctl *Controller) PlaceBet(c *fiber.Ctx) error {
	var req PlaceBetRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	// A leg on an already-finished match can never be a live wager.
	for _, sel := range req.Selections {
		var match models.Match
		err := ctl.db.Where("match_id = ?", sel.MatchID).First(&match).Error
		if err == nil && match.Status == models.MatchFinished {
			return helpers.JSONError(c, "MATCH_ALREADY_FINISHED")
		}
	}

	bet, err := ctl.bets.Place(currentUser(c).Username, req.Selections, helpers.ToPaise(req.Stake))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrEmptySlip):
			return helpers.JSONError(c, "EMPTY_SLIP")
		case errors.Is(err, store.ErrInvalidStake):
			return helpers.JSONError(c, "INVALID_STAKE")
		case errors.Is(err, store.ErrDuplicateSelection):
			return helpers.JSONError(c, "DUPLICATE_SELECTION")
		case errors.Is(err, store.ErrInsufficientFunds):
			return helpers.JSONErrorStatus(c, fiber.StatusPaymentRequired, "INSUFFICIENT_FUNDS")
		}
		return helpers.JSONError(c, "FAILED_TO_PLACE_BET")
	}

	monitoring.BetsPlaced.Inc()
	return helpers.JSONCreated(c, "Bet placed", helpers.Bet(bet))
}

func (ctl *Controller) MyBets(c *fiber.Ctx) error {
	bets, err := ctl.bets.ListForUser(currentUser(c).Username)
	if err != nil {
		return helpers.JSONError(c, "FAILED_TO_LIST_BETS")
	}
	out := make([]fiber.Map, 0, len(bets))
	for i := range bets {
		out = append(out, helpers.Bet(&bets[i]))
	}
	return helpers.JSONSuccess(c, "Bet history", out)
}

func (ctl *Controller) MyLedger(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	entries, err := ctl.ledger.ListForUser(currentUser(c).Username, limit, offset)
	if err != nil {
		return helpers.JSONError(c, "FAILED_TO_LIST_TRANSACTIONS")
	}
	out := make([]fiber.Map, 0, len(entries))
	for i := range entries {
		out = append(out, helpers.LedgerEntry(&entries[i]))
	}
	return helpers.JSONSuccess(c, "Transaction history", out)
}

type WithdrawRequest struct {
	Amount float64 `json:"amount"`
	UpiID  string  `json:"upi_id"`
}

func (ctl *Controller) RequestWithdrawal(c *fiber.Ctx) error {
	var req WithdrawRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if req.UpiID == "" {
		return helpers.JSONError(c, "UPI_ID_REQUIRED")
	}

	wr, err := ctl.withdrawals.Request(currentUser(c).Username, helpers.ToPaise(req.Amount), req.UpiID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrInvalidAmount):
			return helpers.JSONError(c, "VALID_AMOUNT_REQUIRED")
		case errors.Is(err, store.ErrKycRequired):
			return helpers.JSONErrorStatus(c, fiber.StatusForbidden, "KYC_VERIFICATION_REQUIRED")
		case errors.Is(err, store.ErrInsufficientFunds):
			return helpers.JSONErrorStatus(c, fiber.StatusPaymentRequired, "INSUFFICIENT_FUNDS")
		}
		return helpers.JSONError(c, "FAILED_TO_REQUEST_WITHDRAWAL")
	}
	return helpers.JSONCreated(c, "Withdrawal requested", helpers.Withdrawal(wr))
}

func (ctl *Controller) MyWithdrawals(c *fiber.Ctx) error {
	reqs, err := ctl.withdrawals.ListForUser(currentUser(c).Username)
	if err != nil {
		return helpers.JSONError(c, "FAILED_TO_LIST_WITHDRAWALS")
	}
	out := make([]fiber.Map, 0, len(reqs))
	for i := range reqs {
		out = append(out, helpers.Withdrawal(&reqs[i]))
	}
	return helpers.JSONSuccess(c, "Withdrawal requests", out)
}

type KycRequest struct {
	FullName string `json:"full_name"`
	IDNumber string `json:"id_number"`
	IDType   string `json:"id_type"`
}

func (ctl *Controller) SubmitKyc(c *fiber.Ctx) error {
	var req KycRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if req.FullName == "" || req.IDNumber == "" || req.IDType == "" {
		return helpers.JSONError(c, "ALL_KYC_FIELDS_REQUIRED")
	}

	err := ctl.accounts.SubmitKyc(currentUser(c).Username, models.KycDetails{
		FullName: req.FullName,
		IDNumber: req.IDNumber,
		IDType:   req.IDType,
	})
	if err != nil {
		return helpers.JSONError(c, "FAILED_TO_SUBMIT_KYC")
	}
	return helpers.JSONSuccess(c, "KYC submitted for review", fiber.Map{
		"kyc_status": models.KycPending,
	})
}

func (ctl *Controller) UpdateNotifications(c *fiber.Ctx) error {
	var prefs models.NotificationPrefs
	if err := c.BodyParser(&prefs); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	if err := ctl.accounts.SetNotifications(currentUser(c).Username, prefs); err != nil {
		return helpers.JSONError(c, "FAILED_TO_UPDATE_NOTIFICATIONS")
	}
	return helpers.JSONSuccess(c, "Notification preferences updated", prefs)
}

// Matches serves the public board, preferring the cache snapshot.
func (ctl *Controller) Matches(c *fiber.Ctx) error {
	if board, ok := ctl.cache.Board(c.Context()); ok {
		return helpers.JSONSuccess(c, "Match board", board)
	}

	var matches []models.Match
	err := ctl.db.Where("status <> ?", models.MatchFinished).
		Order("start_time ASC").Find(&matches).Error
	if err != nil {
		return helpers.JSONError(c, "FAILED_TO_LIST_MATCHES")
	}
	return helpers.JSONSuccess(c, "Match board", matches)
}

// MatchInsight proxies the oracle; a failed or unconfigured oracle yields a
// null insight, never an error that would suggest money paths are affected.
func (ctl *Controller) MatchInsight(c *fiber.Ctx) error {
	var match models.Match
	if err := ctl.db.Where("match_id = ?", c.Params("id")).First(&match).Error; err != nil {
		return helpers.JSONErrorStatus(c, fiber.StatusNotFound, "MATCH_NOT_FOUND")
	}

	insight, err := ctl.oracle.MatchInsight(c.Context(), &match)
	if err != nil {
		insight = nil
	}
	return helpers.JSONSuccess(c, "Match insight", fiber.Map{"insight": insight})
}
