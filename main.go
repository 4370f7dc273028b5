package main

import (
	"net/http"
	"shipflow/account"
	"shipflow/bizerror"
	"shipflow/client/es"
	"shipflow/client/oss"
	"shipflow/common"
	"shipflow/documents"
	"shipflow/domain"
	"shipflow/event"
	"shipflow/indices"
	"shipflow/indices/indexlog"
	"shipflow/infra/tracing"
	"shipflow/persistence"
	"shipflow/servehttp"
	"shipflow/session"
	"shipflow/sessions"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.Infoln("service start")

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		logrus.Fatalf("parse database config failed %v\n", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			logrus.Fatalf("failed to prepare database %v\n", err)
		}
	}

	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		logrus.Fatalf("database connection failed %v\n", err)
	}
	defer ds.Stop()

	// database migration (race condition)
	err = ds.GormDB().AutoMigrate(
		&account.User{},
		&domain.WorkflowRequest{},
		&domain.StageRecord{},
		&domain.DocumentRecord{},
		&event.EventRecord{},
		&indexlog.IndexLogRecord{},
	).Error
	if err != nil {
		logrus.Fatalf("database migration failed %v\n", err)
	}

	if err := account.DefaultSecurityConfiguration(); err != nil {
		logrus.Fatalf("failed to prepare default security configuration %v\n", err)
	}

	tracingCloser, err := tracing.Bootstrap(common.GetServiceName())
	if err != nil {
		logrus.Warnf("tracer is not available: %v", err)
	} else {
		defer tracingCloser.Close()
	}

	es.CreateClientFromEnv()
	oss.Bootstrap()

	event.EventHandlers = append(event.EventHandlers, indices.IndexRequestEventHandle)

	engine := gin.Default()
	engine.Use(tracing.TracingIngress(), bizerror.ErrorHandling())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, common.GetServiceName())
	})

	sessions.RegisterSessionsHandler(engine)
	sessions.RegisterSessionHandler(engine, session.SimpleAuthFilter())
	account.RegisterUsersHandler(engine, session.SimpleAuthFilter())

	servehttp.RegisterStagesHandler(engine, session.SimpleAuthFilter())
	servehttp.RegisterRequestsHandler(engine, session.SimpleAuthFilter())
	servehttp.RegisterStagingHandler(engine, session.SimpleAuthFilter())
	servehttp.RegisterRequestSearchHandler(engine, session.SimpleAuthFilter())
	documents.RegisterDocumentsAPI(engine, session.SimpleAuthFilter())
	indices.RegisterIndicesRestAPI(engine, session.SimpleAuthFilter())

	servehttp.StartHTTPServer(engine)
}
