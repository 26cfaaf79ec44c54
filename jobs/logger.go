package jobs

import (
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/jhoicas/bodegas-api/pkg/logger"
)

var _ asynq.Logger = asynqLogger{}

// asynqLogger envía los mensajes internos de asynq al logger estructurado.
type asynqLogger struct {
	log *logger.Logger
}

func (a asynqLogger) Debug(args ...interface{}) { a.log.Debug().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Info(args ...interface{})  { a.log.Info().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Warn(args ...interface{})  { a.log.Warn().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Error(args ...interface{}) { a.log.Error().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Fatal(args ...interface{}) { a.log.Fatal().Msg(fmt.Sprint(args...)) }
