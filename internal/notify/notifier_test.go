package notify

import (
	"os"
	"testing"

	"upbit_bot/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// Уведомления не имеют права ронять торговый цикл: nil и
// недонастроенный Telegram молча глотают сообщение.
func TestTelegramSendIsNilSafe(t *testing.T) {
	var tg *Telegram

	assert.NotPanics(t, func() {
		tg.Send("dropped")
		tg.Sendf("dropped %d", 1)
	})

	assert.NotPanics(t, func() {
		empty := &Telegram{}
		empty.Send("dropped")
		empty.Sendf("dropped %d", 2)
	})
}

func TestStdoutSendf(t *testing.T) {
	s := NewStdout()

	assert.NotPanics(t, func() {
		s.Send("plain")
		s.Sendf("formatted %s %d", "x", 2)
	})
}
