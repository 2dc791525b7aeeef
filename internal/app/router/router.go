package router

import (
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"

	"meridian/kudos_credit_ledger/configs"
	"meridian/kudos_credit_ledger/internal/app/handlers"
	"meridian/kudos_credit_ledger/internal/app/middleware"
	"meridian/kudos_credit_ledger/internal/pkg/common"
	"meridian/kudos_credit_ledger/internal/pkg/custody"
	"meridian/kudos_credit_ledger/internal/pkg/db"
	"meridian/kudos_credit_ledger/internal/pkg/interest"
	"meridian/kudos_credit_ledger/internal/pkg/kafka/producer"
	"meridian/kudos_credit_ledger/internal/pkg/ledger"
	"meridian/kudos_credit_ledger/internal/pkg/oracle"
	"meridian/kudos_credit_ledger/internal/pkg/proof"
	"meridian/kudos_credit_ledger/internal/pkg/reputation"
	"meridian/kudos_credit_ledger/internal/pkg/risk"
	"meridian/kudos_credit_ledger/internal/pkg/services"
	"meridian/kudos_credit_ledger/internal/pkg/store"
	"meridian/kudos_credit_ledger/internal/pkg/utils/worker"
)

// SetupRouter assembles the ledger, its collaborators and the HTTP surface.
// Mongo, Redis and Kafka are each optional; a missing backend degrades the
// corresponding concern (in-memory reputation, no oracle, no events).
func SetupRouter(workerPool *worker.WorkerPool, redisClient *goredis.Client, kafkaProducer *producer.Producer, params *configs.Params) *gin.Engine {

	r := gin.Default()
	meter := otel.Meter(configs.SERVICE_NAME)
	r.Use(otelgin.Middleware(configs.SERVICE_NAME))
	r.Use(middleware.NewMetricMiddleware(meter))
	r.Use(middleware.AttachRequestDetails())

	var reputationStore reputation.Store
	if db.MDB != nil {
		reputationStore = store.NewReputationStore(db.MDB.Database)
	} else {
		reputationStore = reputation.NewMemoryStore()
	}

	var feed oracle.PriceFeed
	if redisClient != nil {
		feed = oracle.NewRedisFeed(redisClient)
	}

	var verifier proof.Verifier
	if configs.PROOF_SECRET != "" {
		verifier = proof.NewHmacVerifier(configs.PROOF_SECRET)
	}

	ceiling, err := common.ParseAmount(params.Risk.NoCollateralCeiling)
	if err != nil {
		ceiling = nil
	}
	policy := risk.NewPolicy(risk.Config{
		MaxRatioBps:         params.Risk.MaxRatioBps,
		ScoreFree:           params.Risk.ScoreFree,
		NoCollateralCeiling: ceiling,
		RequireProof:        params.Risk.RequireProof,
	}, reputationStore, feed, verifier)

	model := interest.NewModel(params.Interest.AprBps, params.Interest.PenaltyAprBps)
	vault := custody.NewMemoryVault()
	hook := reputation.NewScoreHook(reputationStore, params.Reputation.RepayPoints)

	led := ledger.New(ledger.Config{
		OriginationFeeBps: params.Ledger.OriginationFeeBps,
		ProtocolFeeBps:    params.Ledger.ProtocolFeeBps,
		BountyBps:         params.Ledger.BountyBps,
		MinDuration:       time.Duration(params.Ledger.MinDurationSeconds) * time.Second,
		MaxDuration:       time.Duration(params.Ledger.MaxDurationSeconds) * time.Second,
		GracePeriod:       time.Duration(params.Ledger.GracePeriodSeconds) * time.Second,
		Account:           configs.LEDGER_ACCOUNT,
		Treasury:          configs.TREASURY_ACCOUNT,
	}, policy, model, vault, hook)

	var archive services.LoanArchiver
	if db.MDB != nil {
		archive = store.NewLoanArchiveStore(db.MDB.Database)
	}
	var publisher services.EventPublisher
	if kafkaProducer != nil {
		publisher = kafkaProducer
	}

	loanService := services.NewLoanService(led, archive, publisher, workerPool)
	loanHandler := handlers.NewLoanHandler(loanService)
	adminHandler := handlers.NewAdminHandler(led)

	r.POST("/api/v1/loans", loanHandler.OpenLoan)
	r.GET("/api/v1/loans/:loanId", loanHandler.GetLoan)
	r.POST("/api/v1/loans/:loanId/repay", loanHandler.RepayLoan)
	r.POST("/api/v1/loans/:loanId/default", loanHandler.DefaultLoan)
	r.GET("/api/v1/borrowers/:borrower/active", loanHandler.ActiveLoan)
	r.GET("/api/v1/borrowers/:borrower/history", loanHandler.BorrowerHistory)
	r.GET("/api/v1/collateral/:asset", loanHandler.LockedCollateral)

	admin := r.Group("/api/v1/admin", middleware.RequireAdminKey(configs.ADMIN_API_KEY))
	admin.GET("/config", adminHandler.Config)
	admin.POST("/pause", adminHandler.SetPaused)
	admin.POST("/fees", adminHandler.SetFees)
	admin.POST("/duration-bounds", adminHandler.SetDurationBounds)
	admin.POST("/interest-model", adminHandler.SetInterestModel)

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{
			"message": "Health Check"})
	})

	return r
}
