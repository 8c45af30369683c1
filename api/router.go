package api

import (
	"net/http"

	"arena-ledger/domain/interfaces"

	"github.com/gin-gonic/gin"
)

// Services are the settlement operations served over HTTP
type Services struct {
	Ledger      interfaces.WalletService
	Matches     interfaces.MatchSettlementService
	Tournaments interfaces.TournamentSettlementService
	Referrals   interfaces.ReferralService
	Deposits    interfaces.DepositService
}

// NewRouter builds the gin engine for the settlement API
func NewRouter(services Services, environment string) *gin.Engine {
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	ledgerHandler := NewLedgerHandler(services.Ledger)
	matchHandler := NewMatchHandler(services.Matches)
	tournamentHandler := NewTournamentHandler(services.Tournaments)
	referralHandler := NewReferralHandler(services.Referrals)
	depositHandler := NewDepositHandler(services.Deposits)

	v1 := r.Group("/v1")
	{
		ledger := v1.Group("/ledger")
		{
			ledger.POST("/credit", ledgerHandler.Credit)
			ledger.POST("/debit", ledgerHandler.Debit)
		}

		accounts := v1.Group("/accounts/:id")
		{
			accounts.GET("/balance", ledgerHandler.GetBalance)
			accounts.GET("/transactions", ledgerHandler.GetTransactions)
			accounts.GET("/reconcile", ledgerHandler.Reconcile)
		}
		v1.GET("/house/balance", ledgerHandler.GetHouseBalance)

		matches := v1.Group("/matches")
		{
			matches.POST("", matchHandler.CreateMatch)
			matches.GET("/:id", matchHandler.GetMatch)
			matches.POST("/:id/scores", matchHandler.SubmitScore)
		}

		tournaments := v1.Group("/tournaments")
		{
			tournaments.POST("", tournamentHandler.CreateTournament)
			tournaments.GET("/:id", tournamentHandler.GetTournament)
			tournaments.POST("/:id/start", tournamentHandler.StartTournament)
			tournaments.POST("/:id/scores", tournamentHandler.SubmitScore)
			tournaments.POST("/:id/close", tournamentHandler.CloseTournament)
			tournaments.POST("/:id/distribute", tournamentHandler.DistributePrizes)
			tournaments.GET("/:id/leaderboard", tournamentHandler.GetLeaderboard)
		}

		users := v1.Group("/users/:id")
		{
			users.GET("/referral-code", referralHandler.GetCode)
			users.GET("/referral", referralHandler.GetReferral)
			users.POST("/referral", referralHandler.ApplyCode)
			users.GET("/referrals", referralHandler.ListReferrals)
		}

		v1.POST("/deposits", depositHandler.RecordDeposit)
	}

	return r
}
