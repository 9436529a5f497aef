package admin

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"nexusbet/helpers"
	"nexusbet/models"
	"nexusbet/monitoring"
	"nexusbet/store"
)

type Controller struct {
	db          *gorm.DB
	accounts    *store.AccountStore
	ledger      *store.Ledger
	bets        *store.BetStore
	treasury    *store.Treasury
	withdrawals *store.WithdrawalQueue
}

func New(
	db *gorm.DB,
	accounts *store.AccountStore,
	ledger *store.Ledger,
	bets *store.BetStore,
	treasury *store.Treasury,
	withdrawals *store.WithdrawalQueue,
) *Controller {
	return &Controller{
		db:          db,
		accounts:    accounts,
		ledger:      ledger,
		bets:        bets,
		treasury:    treasury,
		withdrawals: withdrawals,
	}
}

func actingAdmin(c *fiber.Ctx) models.User {
	user, _ := c.Locals("user").(models.User)
	return user
}

func (ctl *Controller) ListAccounts(c *fiber.Ctx) error {
	users, err := ctl.accounts.List()
	if err != nil {
		return helpers.JSONError(c, "FAILED_TO_LIST_USERS")
	}
	out := make([]fiber.Map, 0, len(users))
	for i := range users {
		out = append(out, helpers.Profile(&users[i]))
	}
	return helpers.JSONSuccess(c, "Accounts", out)
}

type AdjustRequest struct {
	Amount float64 `json:"amount"`
	Reason string  `json:"reason"`
}

func (ctl *Controller) Adjust(c *fiber.Ctx) error {
	var req AdjustRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if strings.TrimSpace(req.Reason) == "" {
		return helpers.JSONError(c, "REASON_REQUIRED")
	}

	user, err := ctl.accounts.AdjustBalance(c.Params("username"), helpers.ToPaise(req.Amount), req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return helpers.JSONErrorStatus(c, fiber.StatusNotFound, "USER_NOT_FOUND")
		case errors.Is(err, store.ErrInsufficientFunds):
			return helpers.JSONErrorStatus(c, fiber.StatusPaymentRequired, "INSUFFICIENT_FUNDS")
		}
		return helpers.JSONError(c, "FAILED_TO_ADJUST_BALANCE")
	}
	return helpers.JSONSuccess(c, "Balance adjusted", helpers.Profile(user))
}

type SetBalanceRequest struct {
	Balance float64 `json:"balance"`
	Reason  string  `json:"reason"`
}

func (ctl *Controller) SetBalance(c *fiber.Ctx) error {
	var req SetBalanceRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if strings.TrimSpace(req.Reason) == "" {
		return helpers.JSONError(c, "REASON_REQUIRED")
	}

	user, err := ctl.accounts.SetBalance(c.Params("username"), helpers.ToPaise(req.Balance), req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return helpers.JSONErrorStatus(c, fiber.StatusNotFound, "USER_NOT_FOUND")
		case errors.Is(err, store.ErrInvalidAmount):
			return helpers.JSONError(c, "BALANCE_CANNOT_BE_NEGATIVE")
		}
		return helpers.JSONError(c, "FAILED_TO_SET_BALANCE")
	}
	return helpers.JSONSuccess(c, "Balance set", helpers.Profile(user))
}

func (ctl *Controller) Ban(c *fiber.Ctx) error {
	return ctl.setBan(c, true)
}

func (ctl *Controller) Unban(c *fiber.Ctx) error {
	return ctl.setBan(c, false)
}

func (ctl *Controller) setBan(c *fiber.Ctx, banned bool) error {
	username := c.Params("username")
	if banned && username == actingAdmin(c).Username {
		return helpers.JSONErrorStatus(c, fiber.StatusForbidden, "CANNOT_BAN_SELF")
	}

	if err := ctl.accounts.SetBanStatus(username, banned); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return helpers.JSONErrorStatus(c, fiber.StatusNotFound, "USER_NOT_FOUND")
		}
		return helpers.JSONError(c, "FAILED_TO_UPDATE_BAN_STATUS")
	}

	msg := "Account unbanned"
	if banned {
		msg = "Account banned"
	}
	return helpers.JSONSuccess(c, msg, fiber.Map{"username": username, "is_banned": banned})
}

type RoleRequest struct {
	Role string `json:"role"`
}

func (ctl *Controller) SetRole(c *fiber.Ctx) error {
	var req RoleRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	username := c.Params("username")
	if username == actingAdmin(c).Username && req.Role != models.RoleAdmin {
		return helpers.JSONErrorStatus(c, fiber.StatusForbidden, "CANNOT_DEMOTE_SELF")
	}

	if err := ctl.accounts.SetRole(username, req.Role); err != nil {
		switch {
		case errors.Is(err, store.ErrInvalidArgument):
			return helpers.JSONError(c, "INVALID_ROLE")
		case errors.Is(err, store.ErrNotFound):
			return helpers.JSONErrorStatus(c, fiber.StatusNotFound, "USER_NOT_FOUND")
		}
		return helpers.JSONError(c, "FAILED_TO_SET_ROLE")
	}
	return helpers.JSONSuccess(c, "Role updated", fiber.Map{"username": username, "role": req.Role})
}

type KycReviewRequest struct {
	Status string `json:"status"`
}

// ReviewKyc moves an account's KYC status, normally Pending to Verified or
// Rejected.
func (ctl *Controller) ReviewKyc(c *fiber.Ctx) error {
	var req KycReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	username := c.Params("username")
	if err := ctl.accounts.SetKycStatus(username, req.Status); err != nil {
		switch {
		case errors.Is(err, store.ErrInvalidArgument):
			return helpers.JSONError(c, "INVALID_KYC_STATUS")
		case errors.Is(err, store.ErrNotFound):
			return helpers.JSONErrorStatus(c, fiber.StatusNotFound, "USER_NOT_FOUND")
		}
		return helpers.JSONError(c, "FAILED_TO_UPDATE_KYC")
	}
	return helpers.JSONSuccess(c, "KYC status updated", fiber.Map{"username": username, "kyc_status": req.Status})
}

func (ctl *Controller) Purge(c *fiber.Ctx) error {
	username := c.Params("username")
	if username == actingAdmin(c).Username {
		return helpers.JSONErrorStatus(c, fiber.StatusForbidden, "CANNOT_PURGE_SELF")
	}

	if err := ctl.accounts.Purge(username); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return helpers.JSONErrorStatus(c, fiber.StatusNotFound, "USER_NOT_FOUND")
		case errors.Is(err, store.ErrAccountInUse):
			return helpers.JSONErrorStatus(c, fiber.StatusConflict, "ACCOUNT_HAS_OPEN_ACTIVITY")
		}
		return helpers.JSONError(c, "FAILED_TO_PURGE_ACCOUNT")
	}
	return helpers.JSONSuccess(c, "Account purged", fiber.Map{"username": username})
}

func (ctl *Controller) TreasurySnapshot(c *fiber.Ctx) error {
	stats, err := ctl.treasury.Snapshot()
	if err != nil {
		return helpers.JSONError(c, "FAILED_TO_READ_TREASURY")
	}
	return helpers.JSONSuccess(c, "Treasury snapshot", helpers.Treasury(stats))
}

type HarvestRequest struct {
	Amount  float64 `json:"amount"`
	Confirm string  `json:"confirm"`
}

// Harvest moves house profit into the acting admin's own balance. The CONFIRM
// phrase is a deliberate speed bump on an irreversible sweep.
func (ctl *Controller) Harvest(c *fiber.Ctx) error {
	var req HarvestRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if req.Confirm != "CONFIRM" {
		return helpers.JSONError(c, "CONFIRMATION_REQUIRED")
	}

	amount := helpers.ToPaise(req.Amount)
	if amount <= 0 {
		stats, err := ctl.treasury.Snapshot()
		if err != nil {
			return helpers.JSONError(c, "FAILED_TO_READ_TREASURY")
		}
		amount = stats.TotalProfit
	}

	stats, err := ctl.treasury.Harvest(actingAdmin(c).Username, amount)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNothingToHarvest), errors.Is(err, store.ErrInvalidAmount):
			return helpers.JSONError(c, "NO_PROFIT_TO_HARVEST")
		}
		return helpers.JSONError(c, "FAILED_TO_HARVEST")
	}
	return helpers.JSONSuccess(c, "Profit harvested", helpers.Treasury(stats))
}

type ResolveWithdrawalRequest struct {
	Approve bool `json:"approve"`
}

func (ctl *Controller) ResolveWithdrawal(c *fiber.Ctx) error {
	var req ResolveWithdrawalRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	wr, err := ctl.withdrawals.Resolve(c.Params("id"), req.Approve)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return helpers.JSONErrorStatus(c, fiber.StatusNotFound, "WITHDRAWAL_NOT_FOUND")
		case errors.Is(err, store.ErrAlreadyResolved):
			return helpers.JSONErrorStatus(c, fiber.StatusConflict, "WITHDRAWAL_ALREADY_RESOLVED")
		}
		return helpers.JSONError(c, "FAILED_TO_RESOLVE_WITHDRAWAL")
	}

	decision := "rejected"
	if req.Approve {
		decision = "approved"
	}
	monitoring.WithdrawalsResolved.WithLabelValues(decision).Inc()
	return helpers.JSONSuccess(c, "Withdrawal "+decision, helpers.Withdrawal(wr))
}

func (ctl *Controller) ListWithdrawals(c *fiber.Ctx) error {
	reqs, err := ctl.withdrawals.ListPending()
	if err != nil {
		return helpers.JSONError(c, "FAILED_TO_LIST_WITHDRAWALS")
	}
	out := make([]fiber.Map, 0, len(reqs))
	for i := range reqs {
		out = append(out, helpers.Withdrawal(&reqs[i]))
	}
	return helpers.JSONSuccess(c, "Pending withdrawals", out)
}

type ForceSettleRequest struct {
	Outcome string `json:"outcome"`
}

// ForceSettle manually settles a stuck slip. Settling a slip that already
// reached a terminal state is reported as success with its current state.
func (ctl *Controller) ForceSettle(c *fiber.Ctx) error {
	var req ForceSettleRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if req.Outcome != models.BetWon && req.Outcome != models.BetLost {
		return helpers.JSONError(c, "INVALID_OUTCOME")
	}

	bet, err := ctl.bets.ForceSettle(c.Params("id"), req.Outcome == models.BetWon)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return helpers.JSONErrorStatus(c, fiber.StatusNotFound, "BET_NOT_FOUND")
		}
		return helpers.JSONError(c, "FAILED_TO_SETTLE_BET")
	}
	return helpers.JSONSuccess(c, "Bet settled", helpers.Bet(bet))
}

func (ctl *Controller) ListPendingBets(c *fiber.Ctx) error {
	bets, err := ctl.bets.ListPending()
	if err != nil {
		return helpers.JSONError(c, "FAILED_TO_LIST_BETS")
	}
	out := make([]fiber.Map, 0, len(bets))
	for i := range bets {
		row := helpers.Bet(&bets[i])
		row["username"] = bets[i].Username
		out = append(out, row)
	}
	return helpers.JSONSuccess(c, "Pending bets", out)
}

func (ctl *Controller) UserLedger(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	entries, err := ctl.ledger.ListForUser(c.Params("username"), limit, offset)
	if err != nil {
		return helpers.JSONError(c, "FAILED_TO_LIST_TRANSACTIONS")
	}
	out := make([]fiber.Map, 0, len(entries))
	for i := range entries {
		out = append(out, helpers.LedgerEntry(&entries[i]))
	}
	return helpers.JSONSuccess(c, "Account ledger", out)
}

func (ctl *Controller) GlobalLedger(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	offset := c.QueryInt("offset", 0)

	entries, err := ctl.ledger.ListGlobal(limit, offset)
	if err != nil {
		return helpers.JSONError(c, "FAILED_TO_LIST_TRANSACTIONS")
	}
	out := make([]fiber.Map, 0, len(entries))
	for i := range entries {
		row := helpers.LedgerEntry(&entries[i])
		row["username"] = entries[i].Username
		out = append(out, row)
	}
	return helpers.JSONSuccess(c, "Global ledger", out)
}
