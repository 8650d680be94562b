package log

import (
	"go.uber.org/zap"

	"mirgoscene/internal/errs"
)

type Field = zap.Field

var (
	String = zap.String
	Int    = zap.Int
	Uint32 = zap.Uint32
)

func Error(err error) Field {
	return zap.Error(err)
}

// Kind tags an entry with the error taxonomy name (IOError, ParseError...).
func Kind(err error) Field {
	k := errs.KindOf(err)
	if k == 0 {
		return zap.Skip()
	}
	return zap.String("kind", k.String())
}
