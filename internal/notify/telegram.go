package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync"
	"text/template"

	"github.com/enescakir/emoji"
)

// DefaultTemplate is the HTML caption used when no template is configured.
const DefaultTemplate = `{{ statusEmoji .Failed }} Batch <b>{{ .JobID }}</b> for survey <code>{{ .SurveyCode }}</code>
Rendered {{ .Rendered }}/{{ .Total }} QR codes{{ if .Signed }} {{ signedEmoji }} signed{{ end }}{{ if .Failed }}, {{ .Failed }} failed{{ end }}`

type Telegram struct {
	BotToken string
	Channel  string
	Client   *http.Client
	Template string
	apiBase  string
	mu       sync.RWMutex
	tmpl     *template.Template
}

func NewTelegram(botToken, channel, tmpl string, client *http.Client) *Telegram {
	if tmpl == "" {
		tmpl = DefaultTemplate
	}
	t := &Telegram{
		BotToken: botToken,
		Channel:  channel,
		Template: tmpl,
		Client:   client,
		apiBase:  "https://api.telegram.org",
	}
	t.initTemplate()
	return t
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

func (t *Telegram) initTemplate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	funcMap := template.FuncMap{
		"statusEmoji": func(failed int) string {
			if failed > 0 {
				return emoji.Warning.String()
			}
			return emoji.CheckMarkButton.String()
		},
		"signedEmoji": func() string {
			return emoji.Locked.String()
		},
	}
	if tmpl, err := template.New("telegram").Funcs(funcMap).Parse(t.Template); err == nil {
		t.tmpl = tmpl
	}
}

func (t *Telegram) caption(summary BatchSummary) (string, error) {
	t.mu.RLock()
	tmpl := t.tmpl
	t.mu.RUnlock()

	if tmpl == nil {
		t.initTemplate()
		t.mu.RLock()
		tmpl = t.tmpl
		t.mu.RUnlock()
		if tmpl == nil {
			return "", fmt.Errorf("failed to initialize template")
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, summary); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// SendSummary posts a text summary of a finished batch to the channel.
func (t *Telegram) SendSummary(summary BatchSummary) error {
	text, err := t.caption(summary)
	if err != nil {
		return err
	}

	jsonData, err := json.Marshal(telegramMessage{
		ChatID:    t.Channel,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost,
		t.apiBase+"/bot"+t.BotToken+"/sendMessage",
		bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return t.do(req)
}

// SendQRCode uploads one rendered QR PNG with the batch caption, so the
// channel gets a scannable preview of what went to print.
func (t *Telegram) SendQRCode(summary BatchSummary, png []byte) error {
	caption, err := t.caption(summary)
	if err != nil {
		return err
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	_ = writer.WriteField("chat_id", t.Channel)
	_ = writer.WriteField("caption", caption)
	_ = writer.WriteField("parse_mode", "HTML")

	part, err := writer.CreateFormFile("photo", "qr_"+summary.SurveyCode+".png")
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(png); err != nil {
		return fmt.Errorf("failed to write photo: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish form: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost,
		t.apiBase+"/bot"+t.BotToken+"/sendPhoto",
		&body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return t.do(req)
}

func (t *Telegram) do(req *http.Request) error {
	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API returned non-200 status code: %d", resp.StatusCode)
	}
	return nil
}
