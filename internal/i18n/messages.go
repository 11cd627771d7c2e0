// Package i18n holds the user-facing texts. English strings are the keys;
// Turkish is the default language of the deployment.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const (
	MsgSMSCode          = "Your verification code: %s"
	MsgCodeSentInfo     = "We sent a verification code to your phone number. Please enter the code."
	MsgYourPhone        = "Your phone number: %s"
	MsgVerified         = "Your phone number has been verified."
	MsgWrongCode        = "The verification code you entered is incorrect."
	MsgCodeNotFound     = "Verification code not found."
	MsgCodeResent       = "Verification code sent again."
	MsgResendFailed     = "An error occurred while sending the verification code."
	MsgGenericError     = "Something went wrong, please try again."
	MsgUserNotFound     = "User not found."
	MsgPhoneNotFound    = "Phone number not found."
	MsgCodeRequired     = "Verification code is required."
	MsgUnknownAction    = "Unknown action."
	MsgOverrideDone     = "The user's phone number was updated and verified."
	MsgPhoneUpdated     = "Your phone number was updated."
	MsgLogoutConfirm    = "Do you want to log out?"
	MsgLoggedOut        = "You have been logged out."
	MsgDeliveryDeferred = "The code could not be delivered right now, use resend to try again."
	MsgInvalidRequest   = "Invalid request."
	MsgPhoneRequired    = "Phone number is required."
	MsgPhoneTaken       = "This phone number cannot be used."
)

var supported = []language.Tag{language.Turkish, language.English}

var matcher = language.NewMatcher(supported)

var cat = func() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	tr := map[string]string{
		MsgSMSCode:          "Doğrulama kodunuz: %s",
		MsgCodeSentInfo:     "Telefon numaranıza bir doğrulama kodu gönderdik. Lütfen doğrulama kodunu girin.",
		MsgYourPhone:        "Telefon numaranız: %s",
		MsgVerified:         "Telefon numaranız başarıyla doğrulandı.",
		MsgWrongCode:        "Girilen doğrulama kodu yanlış.",
		MsgCodeNotFound:     "Doğrulama kodu bulunamadı.",
		MsgCodeResent:       "Doğrulama kodu tekrar gönderildi.",
		MsgResendFailed:     "Doğrulama kodu gönderilirken bir hata oluştu.",
		MsgGenericError:     "Bir hata oluştu, lütfen tekrar deneyin.",
		MsgUserNotFound:     "Kullanıcı bulunamadı.",
		MsgPhoneNotFound:    "Telefon numarası bulunamadı.",
		MsgCodeRequired:     "Doğrulama kodu gerekli.",
		MsgUnknownAction:    "Bilinmeyen işlem.",
		MsgOverrideDone:     "Kullanıcının telefon numarası güncellendi ve onaylandı.",
		MsgPhoneUpdated:     "Telefon numaranız güncellendi.",
		MsgLogoutConfirm:    "Çıkış yapmak istiyor musunuz?",
		MsgLoggedOut:        "Çıkış yaptınız.",
		MsgDeliveryDeferred: "Kod şu anda gönderilemedi, tekrar göndermeyi deneyin.",
		MsgInvalidRequest:   "Geçersiz istek.",
		MsgPhoneRequired:    "Telefon numarası gerekli.",
		MsgPhoneTaken:       "Bu telefon numarası kullanılamaz.",
	}
	for key, msg := range tr {
		_ = b.SetString(language.Turkish, key, msg)
		_ = b.SetString(language.English, key, key)
	}
	return b
}()

// Printer picks the best supported language for one or more
// Accept-Language style strings, falling back to the first supported tag.
func Printer(langs ...string) *message.Printer {
	tag, _ := language.MatchStrings(matcher, langs...)
	base, _ := tag.Base()
	return message.NewPrinter(language.Make(base.String()), message.Catalog(cat))
}
