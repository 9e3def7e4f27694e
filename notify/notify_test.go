package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"golang.org/x/time/rate"
)

func TestSplitMessage(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxLen   int
		expected []string
	}{
		{"fits", "Out: Loft\nIn: Serene", 100, []string{"Out: Loft\nIn: Serene"}},
		{"line boundary", "aaaa\nbbbb\ncccc", 10, []string{"aaaa\nbbbb", "cccc"}},
		{"long line cut", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"multibyte not split", "ééé", 3, []string{"é", "é", "é"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitMessage(tt.text, tt.maxLen)
			if strings.Join(got, "|") != strings.Join(tt.expected, "|") {
				t.Errorf("SplitMessage() = %q, want %q", got, tt.expected)
			}
			for _, part := range got {
				if len(part) > tt.maxLen {
					t.Errorf("part %q longer than %d", part, tt.maxLen)
				}
			}
		})
	}
}

func TestSplitMessageRuneWiderThanChunk(t *testing.T) {
	got := SplitMessage("日本x", 2)
	want := []string{"日", "本", "x"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("SplitMessage() = %q, want %q", got, want)
	}
}

type fakeBot struct {
	sent []tgbotapi.MessageConfig
	fail map[int64]bool
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg := c.(tgbotapi.MessageConfig)
	if f.fail[msg.ChatID] {
		return tgbotapi.Message{}, errors.New("chat not found")
	}
	f.sent = append(f.sent, msg)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func TestTelegramNotifier(t *testing.T) {
	bot := &fakeBot{fail: map[int64]bool{3: true}}
	n := NewTelegramNotifier(bot, []int64{1, 2, 3}, nil)
	n.SetRateLimit(rate.Inf, 1)

	long := strings.Repeat("line of text\n", 400)
	err := n.Notify(context.Background(), long)
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Errorf("Notify() error = %v, want chat not found", err)
	}

	perChat := len(SplitMessage(long, MaxTelegramMessage))
	if perChat < 2 {
		t.Fatalf("test text should need several chunks, got %d", perChat)
	}
	if len(bot.sent) != 2*perChat {
		t.Errorf("sent %d messages, want %d", len(bot.sent), 2*perChat)
	}
	if bot.sent[0].ChatID != 1 || bot.sent[perChat].ChatID != 2 {
		t.Errorf("messages not grouped per chat")
	}
}

func TestTelegramNotifierCancelled(t *testing.T) {
	bot := &fakeBot{}
	n := NewTelegramNotifier(bot, []int64{1}, nil)
	n.SetRateLimit(rate.Every(1e12), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := n.Notify(ctx, "hello"); err == nil {
		t.Error("Notify() should fail on a cancelled context")
	}
}

type fakeTwilio struct {
	params []*openapi.CreateMessageParams
	err    error
}

func (f *fakeTwilio) CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.params = append(f.params, params)
	sid := "SM123"
	return &openapi.ApiV2010Message{Sid: &sid}, nil
}

func TestWhatsAppNotifier(t *testing.T) {
	api := &fakeTwilio{}
	n := NewWhatsAppNotifier(api, "+14155238886", []string{"+6281234", "whatsapp:+6285678"}, nil)

	if err := n.Notify(context.Background(), "Out: Loft"); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if len(api.params) != 2 {
		t.Fatalf("sent %d messages, want 2", len(api.params))
	}
	if *api.params[0].To != "whatsapp:+6281234" || *api.params[1].To != "whatsapp:+6285678" {
		t.Errorf("recipients = %s, %s", *api.params[0].To, *api.params[1].To)
	}
	if *api.params[0].From != "whatsapp:+14155238886" || *api.params[0].Body != "Out: Loft" {
		t.Errorf("params = %s / %s", *api.params[0].From, *api.params[0].Body)
	}
}

func TestWhatsAppNotifierError(t *testing.T) {
	n := NewWhatsAppNotifier(&fakeTwilio{err: errors.New("unauthorized")}, "+1", []string{"+62"}, nil)
	if err := n.Notify(context.Background(), "hi"); err == nil {
		t.Error("Notify() expected error, got nil")
	}
}

func TestWhatsAppAddress(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"+6281234", "whatsapp:+6281234"},
		{"6281234", "whatsapp:+6281234"},
		{" whatsapp:+6281234 ", "whatsapp:+6281234"},
	}

	for _, tt := range tests {
		if got := whatsappAddress(tt.input); got != tt.expected {
			t.Errorf("whatsappAddress(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

type recorder struct {
	calls int
	err   error
}

func (r *recorder) Notify(ctx context.Context, text string) error {
	r.calls++
	return r.err
}

func TestMulti(t *testing.T) {
	a := &recorder{}
	b := &recorder{err: errors.New("down")}
	c := &recorder{}

	err := Multi{a, b, c}.Notify(context.Background(), "hi")
	if err == nil {
		t.Error("Multi.Notify() should report the failing notifier")
	}
	if a.calls != 1 || b.calls != 1 || c.calls != 1 {
		t.Errorf("calls = %d %d %d, want every notifier called once", a.calls, b.calls, c.calls)
	}
}
