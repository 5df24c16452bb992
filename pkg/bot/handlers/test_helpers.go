package handlers

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dmoreira/tg-focus-coach/pkg/config"
	"github.com/dmoreira/tg-focus-coach/pkg/trigger"
	"github.com/dmoreira/tg-focus-coach/pkg/window"
	telegram "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const testGroupChatID int64 = -100900

type recordedRequest struct {
	path        string
	method      string
	contentType string
	body        []byte
}

type mockClient struct {
	requests []recordedRequest
	response string
}

func newMockClient() *mockClient {
	return &mockClient{
		response: `{"ok":true,"result":{"message_id":1,"chat":{"id":-100900}}}`,
	}
}

func (m *mockClient) Do(req *http.Request) (*http.Response, error) {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if err := req.Body.Close(); err != nil {
		return nil, fmt.Errorf("failed to close request body: %w", err)
	}
	m.requests = append(m.requests, recordedRequest{
		path:        req.URL.Path,
		method:      req.Method,
		contentType: req.Header.Get("Content-Type"),
		body:        body,
	})

	resp := &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(m.response)),
		Header:     make(http.Header),
	}
	return resp, nil
}

func (m *mockClient) textOfRequest(t *testing.T, index int) string {
	t.Helper()
	if index >= len(m.requests) {
		t.Fatalf("expected at least %d recorded requests, got %d", index+1, len(m.requests))
	}
	req := m.requests[index]

	mediaType, params, err := mime.ParseMediaType(req.contentType)
	if err != nil {
		t.Fatalf("failed to parse media type: %v", err)
	}
	if !strings.HasPrefix(mediaType, "multipart/") {
		t.Fatalf("unexpected media type: %s", mediaType)
	}

	reader := multipart.NewReader(bytes.NewReader(req.body), params["boundary"])
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("failed to read multipart part: %v", err)
		}
		if part.FormName() == "text" {
			data, err := io.ReadAll(part)
			if err != nil {
				t.Fatalf("failed to read text part: %v", err)
			}
			return string(data)
		}
	}
	t.Fatalf("text field not found in request %d", index)
	return ""
}

func (m *mockClient) lastMessageText(t *testing.T) string {
	t.Helper()
	if len(m.requests) == 0 {
		t.Fatalf("expected at least one recorded request")
	}
	return m.textOfRequest(t, len(m.requests)-1)
}

func (m *mockClient) lastRequestBody(t *testing.T) string {
	t.Helper()
	if len(m.requests) == 0 {
		t.Fatalf("expected at least one recorded request")
	}
	return string(m.requests[len(m.requests)-1].body)
}

func newTestTelegramBot(t *testing.T, client *mockClient) *telegram.Bot {
	t.Helper()
	b, err := telegram.New("test-token",
		telegram.WithSkipGetMe(),
		telegram.WithHTTPClient(time.Second, client),
	)
	if err != nil {
		t.Fatalf("failed to create test bot: %v", err)
	}
	return b
}

// setupHandlerDeps wires a fresh scheduler, tracker and bot-backed
// sender into the package deps for one test.
func setupHandlerDeps(t *testing.T, b *telegram.Bot) Deps {
	t.Helper()
	sched := trigger.New(config.Location())
	t.Cleanup(sched.Stop)
	d := Deps{
		Scheduler: sched,
		Tracker:   window.NewTracker(time.Now),
		Sender:    NewBotSender(b),
	}
	Configure(d)
	t.Cleanup(func() { Configure(Deps{}) })
	return d
}

func newGroupUpdate(text string, userID int64) *models.Update {
	return &models.Update{
		Message: &models.Message{
			From: &models.User{
				ID:        userID,
				FirstName: fmt.Sprintf("User%d", userID),
			},
			Chat: models.Chat{
				ID:   testGroupChatID,
				Type: models.ChatTypeSupergroup,
			},
			Text: text,
		},
	}
}

func newPrivateUpdate(text string, userID int64) *models.Update {
	return &models.Update{
		Message: &models.Message{
			From: &models.User{
				ID:        userID,
				FirstName: fmt.Sprintf("User%d", userID),
			},
			Chat: models.Chat{
				ID:   userID,
				Type: models.ChatTypePrivate,
			},
			Text: text,
		},
	}
}

func newPhotoUpdate(userID int64, replyTo *models.Message) *models.Update {
	update := newGroupUpdate("", userID)
	update.Message.Photo = []models.PhotoSize{{FileID: "photo-1", Width: 640, Height: 480}}
	update.Message.ReplyToMessage = replyTo
	return update
}

func newCallbackUpdate(data string, userID int64, messageID int) *models.Update {
	return &models.Update{
		CallbackQuery: &models.CallbackQuery{
			ID:   "callback-1",
			From: models.User{ID: userID},
			Data: data,
			Message: models.MaybeInaccessibleMessage{
				Type: models.MaybeInaccessibleMessageTypeMessage,
				Message: &models.Message{
					ID: messageID,
					Chat: models.Chat{
						ID:   testGroupChatID,
						Type: models.ChatTypeSupergroup,
					},
				},
			},
		},
	}
}
