package configs

import (
	"log"
	"os"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
)

// InitRollbar: aktif hanya kalau ROLLBAR_TOKEN diset.
func InitRollbar() bool {
	token := GetEnv("ROLLBAR_TOKEN")
	rollbar.SetEnabled(token != "")
	if token == "" {
		log.Println("⚠️ ROLLBAR_TOKEN kosong, error tracking nonaktif")
		return false
	}

	host, _ := os.Hostname()
	rollbar.SetToken(token)
	rollbar.SetEnvironment(GetEnv("APP_ENV", "development"))
	rollbar.SetServerHost(host)
	rollbar.SetCodeVersion(GetEnv("APP_BUILD", "dev"))
	rollbar.SetStackTracer(errors.StackTracer)
	log.Println("✅ Rollbar aktif")
	return true
}

func CloseRollbar() {
	rollbar.Wait()
}
