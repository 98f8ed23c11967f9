package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethicbank/portal-api/internal/config"
	"github.com/ethicbank/portal-api/internal/domain"
	"github.com/ethicbank/portal-api/internal/integration/vendor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModels struct {
	gotModel    string
	gotContents []*genai.Content
	gotConfig   *genai.GenerateContentConfig
	resp        *genai.GenerateContentResponse
	err         error
	getErr      error
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.gotModel = model
	f.gotContents = contents
	f.gotConfig = cfg
	return f.resp, f.err
}

func (f *fakeModels) Get(ctx context.Context, model string, cfg *genai.GetModelConfig) (*genai.Model, error) {
	f.gotModel = model
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &genai.Model{Name: model}, nil
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{Role: genai.RoleModel}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

func testConfig() config.LLMConfig {
	return config.LLMConfig{
		GeminiAPIKey:   "key",
		ModelName:      "gemini-2.0-flash",
		SystemPrompt:   "You are a careful banking assistant.",
		MaxHistory:     2,
		RequestTimeout: time.Second,
	}
}

func history(userID uuid.UUID, contents ...string) []domain.ChatMessage {
	var out []domain.ChatMessage
	for i, c := range contents {
		role := domain.ChatRoleUser
		if i%2 == 1 {
			role = domain.ChatRoleAssistant
		}
		out = append(out, domain.ChatMessage{ID: uuid.New(), UserID: userID, Role: role, Content: c})
	}
	return out
}

func TestReply_BuildsConversation(t *testing.T) {
	fake := &fakeModels{resp: textResponse("Your savings ", "look healthy.")}
	svc := newWithModels(testConfig(), fake)

	h := history(uuid.New(), "first", "answer one", "second", "answer two")
	reply, err := svc.Reply(context.Background(), h, "  how are my savings?  ")
	require.NoError(t, err)
	assert.Equal(t, "Your savings look healthy.", reply)

	assert.Equal(t, "gemini-2.0-flash", fake.gotModel)
	require.Len(t, fake.gotContents, 3, "history trimmed to the last two messages plus the new one")
	assert.Equal(t, "second", fake.gotContents[0].Parts[0].Text)
	assert.Equal(t, string(genai.RoleUser), fake.gotContents[0].Role)
	assert.Equal(t, string(genai.RoleModel), fake.gotContents[1].Role)
	assert.Equal(t, "how are my savings?", fake.gotContents[2].Parts[0].Text)

	require.NotNil(t, fake.gotConfig)
	assert.Equal(t, "You are a careful banking assistant.", fake.gotConfig.SystemInstruction.Parts[0].Text)
}

func TestReply_NoSystemPrompt(t *testing.T) {
	cfg := testConfig()
	cfg.SystemPrompt = ""
	fake := &fakeModels{resp: textResponse("hi")}

	_, err := newWithModels(cfg, fake).Reply(context.Background(), nil, "hello")
	require.NoError(t, err)
	assert.Nil(t, fake.gotConfig)
}

func TestReply_Failures(t *testing.T) {
	tests := []struct {
		name     string
		fake     *fakeModels
		message  string
		wantErr  error
		category vendor.Category
	}{
		{name: "empty_message", fake: &fakeModels{}, message: " ", wantErr: domain.ErrEmptyContent},
		{name: "no_candidates", fake: &fakeModels{resp: &genai.GenerateContentResponse{}}, message: "hi",
			wantErr: ErrEmptyReply, category: vendor.CategoryBadData},
		{name: "blank_text", fake: &fakeModels{resp: textResponse("  ")}, message: "hi",
			wantErr: ErrEmptyReply, category: vendor.CategoryBadData},
		{name: "safety", message: "hi", wantErr: ErrBlocked, fake: &fakeModels{resp: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}}}}},
		{name: "deadline", fake: &fakeModels{err: context.DeadlineExceeded}, message: "hi",
			wantErr: context.DeadlineExceeded, category: vendor.CategoryTimeout},
		{name: "transport", fake: &fakeModels{err: errors.New("connection reset")}, message: "hi",
			category: vendor.CategoryProviderOutage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newWithModels(testConfig(), tt.fake).Reply(context.Background(), nil, tt.message)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.category != "" {
				assert.Equal(t, tt.category, vendor.CategoryOf(err))
			}
		})
	}
}

func TestReply_NotConfigured(t *testing.T) {
	svc := New(config.LLMConfig{ModelName: "gemini-2.0-flash"}, nil)
	assert.False(t, svc.IsConfigured())
	assert.NoError(t, svc.Initialize(context.Background()))

	_, err := svc.Reply(context.Background(), nil, "hi")
	assert.ErrorIs(t, err, vendor.ErrNotConfigured)
}

func TestHealthCheck(t *testing.T) {
	assert.False(t, New(testConfig(), nil).HealthCheck(context.Background()).OK(), "uninitialized client is unhealthy")

	fake := &fakeModels{}
	assert.True(t, newWithModels(testConfig(), fake).HealthCheck(context.Background()).OK())
	assert.Equal(t, "gemini-2.0-flash", fake.gotModel)

	fake.getErr = errors.New("permission denied")
	res := newWithModels(testConfig(), fake).HealthCheck(context.Background())
	assert.False(t, res.OK())
	assert.Contains(t, res.Message, "permission denied")
}

func TestTrimHistory(t *testing.T) {
	h := history(uuid.New(), "a", "b", "c")
	assert.Len(t, trimHistory(h, 10), 3)
	assert.Len(t, trimHistory(h, 1), 1)
	assert.Equal(t, "c", trimHistory(h, 1)[0].Content)
	assert.Empty(t, trimHistory(h, 0))
}
