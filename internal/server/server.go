package server

import (
	"dealtracker/internal/client"
	"dealtracker/internal/database"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

type Server struct {
	DB            database.Database
	Client        client.Client
	Logger        logger
	AuthSecretKey jwk.Key
}

type logger interface {
	Trace(v ...any)
	Debug(v ...any)
	Info(v ...any)
	Error(v ...any)
	Tracef(format string, v ...any)
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Errorf(format string, v ...any)
}
