package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/gosettle/internal/adapter/authority"
	adaptershttp "github.com/iho/gosettle/internal/adapter/http"
	"github.com/iho/gosettle/internal/adapter/http/dto"
	"github.com/iho/gosettle/internal/adapter/http/handler"
	"github.com/iho/gosettle/internal/adapter/repository/postgres"
	redisrepo "github.com/iho/gosettle/internal/adapter/repository/redis"
	"github.com/iho/gosettle/internal/domain"
	infraredis "github.com/iho/gosettle/internal/infrastructure/redis"
	"github.com/iho/gosettle/internal/usecase"
	"github.com/iho/gosettle/tests/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInstructionSubmission(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	testDB.TruncateAll(ctx)

	pool := testDB.Pool
	intentRepo := postgres.NewIntentRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	txManager := postgres.NewTxManager(pool)
	idGen := postgres.NewULIDGenerator()

	// Stand-in settlement authority that accepts every intent.
	authorityServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer authorityServer.Close()

	authorityClient := authority.NewClient(authority.Config{
		BaseURL: authorityServer.URL,
		Logger:  discardLogger(),
	})

	intentUC := usecase.NewIntentUseCase(txManager, intentRepo, outboxRepo, idGen, nil)
	submitterUC := usecase.NewSubmitterUseCase(intentUC, authorityClient, discardLogger(), nil)

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	redisClient, err := infraredis.NewClient(ctx, redisURL)
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	idempotencyStore := redisrepo.NewIdempotencyStore(redisClient)

	router := adaptershttp.NewRouter(adaptershttp.RouterConfig{
		IntentHandler:      handler.NewIntentHandler(intentUC),
		InstructionHandler: handler.NewInstructionHandler(submitterUC),
		HealthHandler:      handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore:   idempotencyStore,
		Logger:             zerolog.Nop(),
	})

	submit := func(message string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/v1/instructions", strings.NewReader(message))
		r.Header.Set("Content-Type", "text/plain")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		return w
	}

	t.Run("submit records intent", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		message := testutil.SampleMT202("TRN-2024-001", decimal.RequireFromString("12345.67"))

		w := submit(message)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
		}

		var resp dto.SubmitResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if resp.AlreadySubmitted {
			t.Error("fresh submission reported as already submitted")
		}
		if resp.Intent.Status != string(domain.IntentStatusCreated) {
			t.Errorf("expected status %s, got %s", domain.IntentStatusCreated, resp.Intent.Status)
		}

		stored, err := intentRepo.GetByInstructionID(ctx, resp.Intent.InstructionID)
		if err != nil {
			t.Fatalf("intent not persisted: %v", err)
		}
		if !stored.Amount.Equal(decimal.RequireFromString("12345.67")) {
			t.Errorf("expected amount 12345.67, got %s", stored.Amount)
		}
	})

	t.Run("resubmission is idempotent", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		message := testutil.SampleMT202("TRN-2024-002", decimal.RequireFromString("500"))

		if w := submit(message); w.Code != http.StatusCreated {
			t.Fatalf("first submission: expected status %d, got %d", http.StatusCreated, w.Code)
		}

		w := submit(message)
		if w.Code != http.StatusOK {
			t.Fatalf("resubmission: expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var resp dto.SubmitResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if !resp.AlreadySubmitted {
			t.Error("resubmission not reported as already submitted")
		}
	})

	t.Run("malformed message rejected", func(t *testing.T) {
		w := submit(":32A:240815USD100,00\n")
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected status %d, got %d: %s", http.StatusUnprocessableEntity, w.Code, w.Body.String())
		}
	})

	t.Run("dispute via api", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		intent := testDB.CreateTestIntent(ctx, "TRN-2024-003", decimal.RequireFromString("250"), domain.IntentStatusOnChainSettled)

		body, _ := json.Marshal(dto.DisputeIntentRequest{Reason: "manual review requested"})
		r := httptest.NewRequest(http.MethodPost, "/api/v1/intents/"+intent.InstructionID+"/dispute", bytes.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		stored, err := intentRepo.GetByInstructionID(ctx, intent.InstructionID)
		if err != nil {
			t.Fatalf("failed to load intent: %v", err)
		}
		if stored.Status != domain.IntentStatusDispute {
			t.Errorf("expected status %s, got %s", domain.IntentStatusDispute, stored.Status)
		}
		if stored.DisputeReason != "manual review requested" {
			t.Errorf("unexpected dispute reason %q", stored.DisputeReason)
		}
	})

	t.Run("stats reflect statuses", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		testDB.CreateTestIntent(ctx, "TRN-2024-010", decimal.RequireFromString("10"), domain.IntentStatusCreated)
		testDB.CreateTestIntent(ctx, "TRN-2024-011", decimal.RequireFromString("11"), domain.IntentStatusCreated)
		testDB.CreateTestIntent(ctx, "TRN-2024-012", decimal.RequireFromString("12"), domain.IntentStatusConfirmedReconciled)

		r := httptest.NewRequest(http.MethodGet, "/api/v1/intents/stats", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var resp dto.StatusCountsResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if resp.Counts[string(domain.IntentStatusCreated)] != 2 {
			t.Errorf("expected 2 created intents, got %d", resp.Counts[string(domain.IntentStatusCreated)])
		}
		if resp.Counts[string(domain.IntentStatusConfirmedReconciled)] != 1 {
			t.Errorf("expected 1 confirmed intent, got %d", resp.Counts[string(domain.IntentStatusConfirmedReconciled)])
		}
	})
}
