package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"testing"
)

func computeHMAC(payload, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	secret := []byte("webhook-secret-123")
	payload := []byte(`{"action":"opened"}`)

	tests := []struct {
		name      string
		payload   []byte
		signature string
		secret    []byte
		wantErr   bool
	}{
		{
			name:      "valid signature",
			payload:   payload,
			signature: computeHMAC(payload, secret),
			secret:    secret,
			wantErr:   false,
		},
		{
			name:      "wrong secret",
			payload:   payload,
			signature: computeHMAC(payload, []byte("wrong-secret")),
			secret:    secret,
			wantErr:   true,
		},
		{
			name:      "tampered payload",
			payload:   []byte(`{"action":"closed"}`),
			signature: computeHMAC(payload, secret),
			secret:    secret,
			wantErr:   true,
		},
		{
			name:      "missing sha256= prefix",
			payload:   payload,
			signature: "not-a-valid-sig",
			secret:    secret,
			wantErr:   true,
		},
		{
			name:      "invalid hex after prefix",
			payload:   payload,
			signature: "sha256=zzzz",
			secret:    secret,
			wantErr:   true,
		},
		{
			name:      "empty signature",
			payload:   payload,
			signature: "",
			secret:    secret,
			wantErr:   true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := VerifySignature(tc.payload, tc.signature, tc.secret)
			if tc.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestParseEvent_Push(t *testing.T) {
	payload := PushEvent{
		Ref:   "refs/heads/main",
		After: "abc123def456",
		Repository: GitHubRepository{
			ID:            42,
			FullName:      "acme/widget",
			DefaultBranch: "main",
		},
		Installation: InstallationPayload{
			ID: 12345,
		},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	event, err := ParseEvent("push", data)
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}

	push, ok := event.(*PushEvent)
	if !ok {
		t.Fatalf("expected *PushEvent, got %T", event)
	}

	if push.Repository.FullName != "acme/widget" {
		t.Errorf("repo = %q, want %q", push.Repository.FullName, "acme/widget")
	}
	if push.After != "abc123def456" {
		t.Errorf("after = %q, want %q", push.After, "abc123def456")
	}
	if push.Installation.ID != 12345 {
		t.Errorf("installation = %d, want 12345", push.Installation.ID)
	}
}

func TestParseEvent_PullRequest(t *testing.T) {
	tests := []struct {
		name       string
		payload    PullRequestEvent
		wantRepo   string
		wantNumber int
		wantSHA    string
		wantBase   string
	}{
		{
			name: "PR opened",
			payload: PullRequestEvent{
				Action: "opened",
				Number: 42,
				PullRequest: PullRequestPayload{
					Number: 42,
					Head: GitRef{
						SHA: "head-sha-abc",
						Ref: "feature/badge-cache",
					},
					Base: GitRef{
						SHA: "base-sha-xyz",
						Ref: "main",
					},
					State: "open",
				},
				Repository: GitHubRepository{
					ID:            100,
					FullName:      "acme/widget",
					DefaultBranch: "main",
				},
				Installation: InstallationPayload{
					ID: 555,
				},
			},
			wantRepo:   "acme/widget",
			wantNumber: 42,
			wantSHA:    "head-sha-abc",
			wantBase:   "main",
		},
		{
			name: "PR synchronize",
			payload: PullRequestEvent{
				Action: "synchronize",
				Number: 99,
				PullRequest: PullRequestPayload{
					Number: 99,
					Head: GitRef{
						SHA: "new-commit-sha",
						Ref: "fix/flaky-check",
					},
					Base: GitRef{
						SHA: "base-sha",
						Ref: "develop",
					},
					State: "open",
				},
				Repository: GitHubRepository{
					ID:            200,
					FullName:      "team/project",
					DefaultBranch: "develop",
				},
				Installation: InstallationPayload{
					ID: 777,
				},
			},
			wantRepo:   "team/project",
			wantNumber: 99,
			wantSHA:    "new-commit-sha",
			wantBase:   "develop",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.payload)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}

			event, err := ParseEvent("pull_request", data)
			if err != nil {
				t.Fatalf("ParseEvent: %v", err)
			}

			pr, ok := event.(*PullRequestEvent)
			if !ok {
				t.Fatalf("expected *PullRequestEvent, got %T", event)
			}

			if pr.Repository.FullName != tc.wantRepo {
				t.Errorf("repo = %q, want %q", pr.Repository.FullName, tc.wantRepo)
			}
			if pr.Number != tc.wantNumber {
				t.Errorf("number = %d, want %d", pr.Number, tc.wantNumber)
			}
			if pr.PullRequest.Head.SHA != tc.wantSHA {
				t.Errorf("head SHA = %q, want %q", pr.PullRequest.Head.SHA, tc.wantSHA)
			}
			if pr.PullRequest.Base.Ref != tc.wantBase {
				t.Errorf("base ref = %q, want %q", pr.PullRequest.Base.Ref, tc.wantBase)
			}
		})
	}
}

func TestParseEvent_UnsupportedType(t *testing.T) {
	_, err := ParseEvent("unknown_event", []byte(`{}`))
	if err == nil {
		t.Error("expected error for unsupported event type, got nil")
	}
}

func TestParseEvent_InvalidJSON(t *testing.T) {
	types := []string{"push", "pull_request", "installation", "installation_repositories"}
	for _, eventType := range types {
		t.Run(eventType, func(t *testing.T) {
			_, err := ParseEvent(eventType, []byte(`{invalid json`))
			if err == nil {
				t.Errorf("expected error parsing invalid JSON for %s, got nil", eventType)
			}
		})
	}
}

func TestSplitFullName(t *testing.T) {
	tests := []struct {
		in        string
		wantOwner string
		wantName  string
		wantOK    bool
	}{
		{"acme/widget", "acme", "widget", true},
		{"a/b/c", "a", "b/c", true},
		{"no-slash", "", "", false},
		{"/name", "", "", false},
		{"owner/", "", "", false},
		{"", "", "", false},
	}

	for _, tc := range tests {
		owner, name, ok := splitFullName(tc.in)
		if owner != tc.wantOwner || name != tc.wantName || ok != tc.wantOK {
			t.Errorf("splitFullName(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tc.in, owner, name, ok, tc.wantOwner, tc.wantName, tc.wantOK)
		}
	}
}

func TestParseEvent_Installation(t *testing.T) {
	payload := InstallationEvent{
		Action: "created",
		Installation: InstallationPayload{
			ID: 12345,
			Account: GitHubUser{
				ID:    678,
				Login: "acme",
			},
		},
		Sender: GitHubUser{
			ID:    999,
			Login: "admin-user",
		},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	event, err := ParseEvent("installation", data)
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}

	inst, ok := event.(*InstallationEvent)
	if !ok {
		t.Fatalf("expected *InstallationEvent, got %T", event)
	}

	if inst.Action != "created" {
		t.Errorf("action = %q, want %q", inst.Action, "created")
	}
	if inst.Installation.ID != 12345 {
		t.Errorf("installation ID = %d, want %d", inst.Installation.ID, 12345)
	}
	if inst.Installation.Account.Login != "acme" {
		t.Errorf("account login = %q, want %q", inst.Installation.Account.Login, "acme")
	}
}
