package http

import (
	"fmt"
	"net/http"
	"testing"
)

func TestGetMessage_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/messages/1", "", nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}

	var body ErrorResponse
	decodeJSON(t, resp, &body)
	if body.Error.Message != "Unauthenticated" {
		t.Errorf("expected 'Unauthenticated' message, got %q", body.Error.Message)
	}
}

func TestSendAndReadFlow(t *testing.T) {
	env := newTestEnv(t)
	aliceToken := env.registerUser(t, "alice")
	bobToken := env.registerUser(t, "bob")

	// Alice sends bob a message.
	resp := env.do(t, http.MethodPost, "/messages/", aliceToken, map[string]any{
		"to_username": "bob",
		"body":        "hi",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var sent struct {
		Message SentMessage `json:"message"`
	}
	decodeJSON(t, resp, &sent)
	if sent.Message.ID == 0 || sent.Message.FromUsername != "alice" || sent.Message.ToUsername != "bob" {
		t.Fatalf("unexpected send payload: %+v", sent.Message)
	}
	if sent.Message.SentAt.IsZero() {
		t.Errorf("expected sent_at to be set")
	}

	// It shows up unread in bob's inbox with alice's profile joined in.
	resp = env.do(t, http.MethodGet, "/users/bob/to", bobToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var inbox struct {
		Messages []InboxMessage `json:"messages"`
	}
	decodeJSON(t, resp, &inbox)
	if len(inbox.Messages) != 1 {
		t.Fatalf("expected 1 inbox message, got %d", len(inbox.Messages))
	}
	got := inbox.Messages[0]
	if got.ID != sent.Message.ID || got.Body != "hi" || got.ReadAt != nil {
		t.Errorf("unexpected inbox entry: %+v", got)
	}
	if got.FromUser.Username != "alice" || got.FromUser.FirstName != "First-alice" {
		t.Errorf("expected sender profile joined in, got %+v", got.FromUser)
	}

	// Bob marks it read.
	resp = env.do(t, http.MethodPost, fmt.Sprintf("/messages/%d/read", sent.Message.ID), bobToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var receipt struct {
		Message ReadReceipt `json:"message"`
	}
	decodeJSON(t, resp, &receipt)
	if receipt.Message.ID != sent.Message.ID || receipt.Message.ReadAt == nil {
		t.Fatalf("unexpected read receipt: %+v", receipt.Message)
	}

	// Alice sees the read timestamp in her outbox.
	resp = env.do(t, http.MethodGet, "/users/alice/from", aliceToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var outbox struct {
		Messages []OutboxMessage `json:"messages"`
	}
	decodeJSON(t, resp, &outbox)
	if len(outbox.Messages) != 1 || outbox.Messages[0].ReadAt == nil {
		t.Fatalf("expected read_at set in outbox, got %+v", outbox.Messages)
	}
	if outbox.Messages[0].ToUser.Username != "bob" {
		t.Errorf("expected recipient profile joined in, got %+v", outbox.Messages[0].ToUser)
	}
}

func TestGetMessage_PartiesOnly(t *testing.T) {
	env := newTestEnv(t)
	aliceToken := env.registerUser(t, "alice")
	bobToken := env.registerUser(t, "bob")
	charlieToken := env.registerUser(t, "charlie")

	resp := env.do(t, http.MethodPost, "/messages/", aliceToken, map[string]any{
		"to_username": "bob",
		"body":        "between us",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var sent struct {
		Message SentMessage `json:"message"`
	}
	decodeJSON(t, resp, &sent)
	path := fmt.Sprintf("/messages/%d", sent.Message.ID)

	for name, token := range map[string]string{"alice": aliceToken, "bob": bobToken} {
		resp = env.do(t, http.MethodGet, path, token, nil)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected status 200, got %d: %s", name, resp.Code, resp.Body.String())
		}
		var body struct {
			Message MessageDetail `json:"message"`
		}
		decodeJSON(t, resp, &body)
		if body.Message.FromUser.Username != "alice" || body.Message.ToUser.Username != "bob" {
			t.Errorf("%s: unexpected message detail: %+v", name, body.Message)
		}
	}

	resp = env.do(t, http.MethodGet, path, charlieToken, nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 for third party, got %d: %s", resp.Code, resp.Body.String())
	}
	var errBody ErrorResponse
	decodeJSON(t, resp, &errBody)
	if errBody.Error.Message != "Unauthorized" {
		t.Errorf("expected 'Unauthorized' message, got %q", errBody.Error.Message)
	}
}

func TestMarkRead_RecipientOnly(t *testing.T) {
	env := newTestEnv(t)
	aliceToken := env.registerUser(t, "alice")
	bobToken := env.registerUser(t, "bob")
	charlieToken := env.registerUser(t, "charlie")

	resp := env.do(t, http.MethodPost, "/messages/", aliceToken, map[string]any{
		"to_username": "bob",
		"body":        "unread",
	})
	var sent struct {
		Message SentMessage `json:"message"`
	}
	decodeJSON(t, resp, &sent)
	readPath := fmt.Sprintf("/messages/%d/read", sent.Message.ID)

	// Neither the sender nor a third party may mark it.
	for name, token := range map[string]string{"alice": aliceToken, "charlie": charlieToken} {
		resp = env.do(t, http.MethodPost, readPath, token, nil)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected status 401, got %d: %s", name, resp.Code, resp.Body.String())
		}
	}

	// The denied attempts left the message unread.
	resp = env.do(t, http.MethodGet, fmt.Sprintf("/messages/%d", sent.Message.ID), bobToken, nil)
	var detail struct {
		Message MessageDetail `json:"message"`
	}
	decodeJSON(t, resp, &detail)
	if detail.Message.ReadAt != nil {
		t.Fatalf("expected message to stay unread, got read_at %v", detail.Message.ReadAt)
	}
}

func TestSendMessage_UnknownRecipient(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerUser(t, "alice")

	resp := env.do(t, http.MethodPost, "/messages/", token, map[string]any{
		"to_username": "ghost",
		"body":        "anyone there",
	})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d: %s", resp.Code, resp.Body.String())
	}
	var body ErrorResponse
	decodeJSON(t, resp, &body)
	if body.Error.Message == "" {
		t.Errorf("expected an error message in the body")
	}
}

func TestSendMessage_EmptyBody(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerUser(t, "alice")
	env.registerUser(t, "bob")

	resp := env.do(t, http.MethodPost, "/messages/", token, map[string]any{
		"to_username": "bob",
		"body":        "",
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestGetMessage_InvalidID(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerUser(t, "alice")

	resp := env.do(t, http.MethodGet, "/messages/abc", token, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestGetMessage_NotFound(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerUser(t, "alice")

	resp := env.do(t, http.MethodGet, "/messages/999", token, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d: %s", resp.Code, resp.Body.String())
	}
}
