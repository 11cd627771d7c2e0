package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrinter_Turkish(t *testing.T) {
	p := Printer("tr")
	assert.Equal(t, "Doğrulama kodunuz: 123456", p.Sprintf(MsgSMSCode, "123456"))
}

func TestPrinter_English(t *testing.T) {
	p := Printer("en-US,en;q=0.9")
	assert.Equal(t, "Your verification code: 654321", p.Sprintf(MsgSMSCode, "654321"))
}

func TestPrinter_UnknownFallsBackToTurkish(t *testing.T) {
	p := Printer("de")
	assert.Equal(t, "Girilen doğrulama kodu yanlış.", p.Sprintf(MsgWrongCode))
}

func TestPrinter_RequestErrors(t *testing.T) {
	assert.Equal(t, "Geçersiz istek.", Printer("tr").Sprintf(MsgInvalidRequest))
	assert.Equal(t, "Bu telefon numarası kullanılamaz.", Printer("tr").Sprintf(MsgPhoneTaken))
	assert.Equal(t, "Phone number is required.", Printer("en").Sprintf(MsgPhoneRequired))
}
