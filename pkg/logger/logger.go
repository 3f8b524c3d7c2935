package logger

import (
	"go.uber.org/zap"
)

var log *zap.Logger

// Init инициализирует глобальный логгер. isDev включает человекочитаемый вывод.
func Init(isDev bool) error {
	var (
		l   *zap.Logger
		err error
	)
	if isDev {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}
	log = l
	return nil
}

// L возвращает глобальный логгер (no-op, если Init не вызывался).
func L() *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}

func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}
