package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"nexusbet/controllers/admin"
	"nexusbet/controllers/auth"
	"nexusbet/controllers/feedctl"
	"nexusbet/controllers/user"
	"nexusbet/middlewares"
)

type Deps struct {
	DB    *gorm.DB
	Auth  *auth.Controller
	User  *user.Controller
	Admin *admin.Controller
	Feed  *feedctl.Controller
}

func Setup(app *fiber.App, deps Deps) {
	api := app.Group("/api")

	// Public
	api.Post("/auth/register", deps.Auth.Register)
	api.Post("/auth/login", deps.Auth.Login)
	api.Post("/auth/logout", deps.Auth.Logout)
	api.Get("/matches", deps.User.Matches)
	api.Get("/matches/:id/insight", deps.User.MatchInsight)

	// Authenticated
	me := api.Group("/me", middlewares.SessionAuth(deps.DB))
	me.Get("/", deps.User.Me)
	me.Post("/deposit", deps.User.Deposit)
	me.Post("/bets", deps.User.PlaceBet)
	me.Get("/bets", deps.User.MyBets)
	me.Get("/transactions", deps.User.MyLedger)
	me.Post("/withdrawals", deps.User.RequestWithdrawal)
	me.Get("/withdrawals", deps.User.MyWithdrawals)
	me.Post("/kyc", deps.User.SubmitKyc)
	me.Post("/notifications", deps.User.UpdateNotifications)

	// Admin
	adm := api.Group("/admin", middlewares.SessionAuth(deps.DB), middlewares.AdminOnly)
	adm.Get("/users", deps.Admin.ListAccounts)
	adm.Post("/users/:username/adjust", deps.Admin.Adjust)
	adm.Post("/users/:username/balance", deps.Admin.SetBalance)
	adm.Post("/users/:username/ban", deps.Admin.Ban)
	adm.Post("/users/:username/unban", deps.Admin.Unban)
	adm.Post("/users/:username/role", deps.Admin.SetRole)
	adm.Post("/users/:username/kyc", deps.Admin.ReviewKyc)
	adm.Delete("/users/:username", deps.Admin.Purge)
	adm.Get("/treasury", deps.Admin.TreasurySnapshot)
	adm.Post("/treasury/harvest", deps.Admin.Harvest)
	adm.Get("/withdrawals", deps.Admin.ListWithdrawals)
	adm.Post("/withdrawals/:id/resolve", deps.Admin.ResolveWithdrawal)
	adm.Get("/bets", deps.Admin.ListPendingBets)
	adm.Post("/bets/:id/settle", deps.Admin.ForceSettle)
	adm.Get("/transactions", deps.Admin.GlobalLedger)
	adm.Get("/users/:username/transactions", deps.Admin.UserLedger)

	// Internal match feed
	feed := api.Group("/feed", middlewares.FeedAuth())
	feed.Post("/match-finished", deps.Feed.MatchFinished)
}
