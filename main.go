package main

import (
	"log"
	"net/http"
	"os"
	"timewheel/account"
	"timewheel/bizerror"
	"timewheel/domain"
	"timewheel/domain/assignment"
	"timewheel/domain/budget"
	"timewheel/domain/planner"
	"timewheel/domain/timesheet"
	"timewheel/es"
	"timewheel/infra/tracing"
	"timewheel/notification"
	"timewheel/persistence"
	"timewheel/reports"
	"timewheel/servehttp"
	"timewheel/session"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func main() {
	log.Println("service start")

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		log.Fatalf("parse database config failed %v\n", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			log.Fatalf("failed to prepare database %v\n", err)
		}
	}

	// connect database
	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		log.Fatalf("database connection failed %v\n", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	// database migration (race condition)
	err = ds.GormDB().AutoMigrate(
		&domain.Tenant{}, &domain.TenantMember{}, &domain.Job{},
		&account.User{},
		&assignment.Assignment{}, &timesheet.Timesheet{},
		&budget.BudgetItem{}, &planner.PlannerEntry{},
		&notification.NotificationRecord{},
	).Error
	if err != nil {
		log.Fatalf("database migration failed %v\n", err)
	}

	es.CreateClientFromEnv()
	reports.Bootstrap()
	reports.StartCron()

	engine := gin.New()
	engine.Use(gin.Recovery(), bizerror.ErrorHandling(), tracing.TracingIngress(), servehttp.RateLimit(rate.Limit(50), 100))
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "timewheel")
	})

	account.RegisterAccountHandlers(engine, session.SimpleAuthFilter())
	timesheet.RegisterTimesheetsHandlers(engine, session.SimpleAuthFilter())
	assignment.RegisterAssignmentsHandlers(engine, session.SimpleAuthFilter())
	budget.RegisterBudgetItemsHandlers(engine, session.SimpleAuthFilter())
	planner.RegisterPlannerHandlers(engine, session.SimpleAuthFilter())
	notification.RegisterNotificationsHandlers(engine, session.SimpleAuthFilter())
	reports.RegisterTimesheetReportsHandlers(engine, session.SimpleAuthFilter())

	addr := ":80"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	servehttp.StartHTTPServer(addr, engine)
}
