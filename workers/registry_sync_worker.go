// workers/registry_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"league-management-system/models"
	"league-management-system/utils"

	"gorm.io/gorm"
)

// RegistryPlayerChange matches the JSON response of the national registry
// service. Only contact and name fields are mirrored; registration status,
// documents and medical data are owned locally.
type RegistryPlayerChange struct {
	UPID        string    `json:"upid"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	Nationality string    `json:"nationality"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type GetPlayerChangesResponse struct {
	Players []RegistryPlayerChange `json:"players"`
}

// PlayerRegistrySyncWorker keeps locally registered players' contact details
// in step with the national registry.
type PlayerRegistrySyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string
	endpointPath string
	serviceToken string
	httpClient   *http.Client
}

func NewPlayerRegistrySyncWorker(db *gorm.DB, registryBaseURL, endpointPath, serviceToken string) *PlayerRegistrySyncWorker {
	return &PlayerRegistrySyncWorker{
		db:           db,
		interval:     5 * time.Minute,
		baseURL:      registryBaseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient:   utils.HTTPClient,
	}
}

func (w *PlayerRegistrySyncWorker) Start(ctx context.Context) {
	log.Println("Starting Player Registry Sync Worker (registry → players)…")
	go w.run(ctx)
}

func (w *PlayerRegistrySyncWorker) run(ctx context.Context) {
	if err := w.syncBatch(ctx, time.Time{}); err != nil {
		log.Printf("Initial registry sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncBatch(ctx, w.getLastSyncTime()); err != nil {
				log.Printf("Registry sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("Player Registry Sync Worker stopped")
			return
		}
	}
}

// getLastSyncTime finds the most recent UpdatedAt from the local players
// table, so incremental syncs only ask for what changed.
func (w *PlayerRegistrySyncWorker) getLastSyncTime() time.Time {
	var lastTime time.Time
	err := w.db.Raw("SELECT MAX(updated_at) FROM players WHERE deleted_at IS NULL").Scan(&lastTime).Error
	if err != nil || lastTime.IsZero() {
		return time.Unix(0, 0)
	}
	return lastTime
}

func (w *PlayerRegistrySyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	sinceStr := since.UTC().Format(time.RFC3339)

	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid registry service URL %q: %w", w.baseURL, err)
	}
	endpointURL := base.JoinPath(w.endpointPath)
	q := endpointURL.Query()
	q.Set("since", sinceStr)
	endpointURL.RawQuery = q.Encode()
	finalURL := endpointURL.String()

	req, err := http.NewRequestWithContext(ctx, "GET", finalURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request to %s: %w", finalURL, err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request to registry service failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("registry service non-200 response: %d: %s", resp.StatusCode, string(body))
	}

	var response GetPlayerChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode registry response: %w", err)
	}
	if len(response.Players) == 0 {
		return nil
	}

	log.Printf("[REGISTRY_SYNC] Processing %d player change(s) since %s", len(response.Players), sinceStr)

	var updated, errors int
	for _, change := range response.Players {
		// Mirror only onto players we already hold; a registry entry with no
		// local registration is not ours to create.
		result := w.db.Model(&models.Player{}).
			Where("upid = ?", change.UPID).
			Updates(map[string]interface{}{
				"first_name":  change.FirstName,
				"last_name":   change.LastName,
				"phone":       change.Phone,
				"email":       change.Email,
				"nationality": change.Nationality,
			})
		if result.Error != nil {
			errors++
			log.Printf("[REGISTRY_SYNC] Failed to update player %s: %v", change.UPID, result.Error)
			continue
		}
		if result.RowsAffected > 0 {
			updated++
		}
	}
	log.Printf("[REGISTRY_SYNC] Done: %d updated, %d errors", updated, errors)
	return nil
}
