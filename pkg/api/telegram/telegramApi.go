package telegram

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const sendTimeout = 10 * time.Second

func SendTextToTelegramChat(text string) {
	if !viper.GetBool("telegram.enabled") {
		zap.S().Debugf("Telegram: %s", text)
		return
	}
	var TELEGRAM_API = "https://api.telegram.org/bot" + os.Getenv("TELEGRAM_BOT_API_KEY") + "/sendMessage"
	var CHAT_ID = os.Getenv("TELEGRAM_BOT_CHAT_ID")

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	form := url.Values{
		"chat_id":    {CHAT_ID},
		"text":       {text},
		"parse_mode": {"HTML"},
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, TELEGRAM_API, strings.NewReader(form.Encode()))
	if err != nil {
		zap.S().Errorf("Error during building telegram request: %s", err.Error())
		return
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	response, err := http.DefaultClient.Do(request)
	if err != nil {
		zap.S().Errorf("Error when posting text to the chat: %s", err.Error())
		return
	}
	defer response.Body.Close()

	if _, errRead := io.ReadAll(response.Body); errRead != nil {
		zap.S().Errorf("Error in parsing telegram answer %s", errRead.Error())
	}
	if response.StatusCode != http.StatusOK {
		zap.S().Errorf("Telegram answered with status %d", response.StatusCode)
	}
}
