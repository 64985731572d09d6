package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pointkeep/pointkeep/internal/handler/dto"
)

type seeded struct {
	UserID  string `json:"user_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Balance int64  `json:"balance"`
}

type userEntry struct {
	name    string
	email   string
	opening int64
}

func main() {
	var (
		baseURL    = flag.String("base-url", envOr("SEED_BASE_URL", "http://localhost:8080"), "API base URL")
		usersInput = flag.String("users", "", "Comma-separated name:email[:opening_points] entries")
		format     = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	entries, err := parseUsers(*usersInput)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := &http.Client{Timeout: 5 * time.Second}
	api := strings.TrimRight(*baseURL, "/") + "/api/v1"

	out := make([]seeded, 0, len(entries))
	for _, entry := range entries {
		s, err := seedUser(ctx, client, api, entry)
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed %s: %v\n", entry.email, err)
			os.Exit(1)
		}
		out = append(out, s)
	}

	switch strings.ToLower(*format) {
	case "plain":
		for _, s := range out {
			fmt.Printf("%s\t%s\t%d\n", s.UserID, s.Email, s.Balance)
		}
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

func parseUsers(input string) ([]userEntry, error) {
	if strings.TrimSpace(input) == "" {
		return nil, fmt.Errorf("-users is required, e.g. -users 'Ann:ann@example.com:100'")
	}
	var entries []userEntry
	for _, raw := range strings.Split(input, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		parts := strings.Split(raw, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("invalid user entry: %s", raw)
		}
		entry := userEntry{name: parts[0], email: parts[1]}
		if len(parts) == 3 {
			n, err := strconv.ParseInt(parts[2], 10, 64)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("invalid opening points in %s", raw)
			}
			entry.opening = n
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// seedUser registers one user and credits its opening balance as an earn.
func seedUser(ctx context.Context, client *http.Client, api string, entry userEntry) (seeded, error) {
	var user dto.UserResponse
	err := postJSON(ctx, client, api+"/register", dto.RegisterRequest{Name: entry.name, Email: entry.email}, http.StatusCreated, &user)
	if err != nil {
		return seeded{}, fmt.Errorf("register: %w", err)
	}

	out := seeded{UserID: user.ID, Name: user.Name, Email: user.Email}
	if entry.opening == 0 {
		return out, nil
	}

	req := dto.TransactionRequest{
		UserID: user.ID,
		Type:   "earn",
		Amount: json.RawMessage(strconv.FormatInt(entry.opening, 10)),
	}
	if err := postJSON(ctx, client, api+"/transaction", req, http.StatusOK, nil); err != nil {
		return seeded{}, fmt.Errorf("opening balance: %w", err)
	}
	out.Balance = entry.opening
	return out, nil
}

func postJSON(ctx context.Context, client *http.Client, url string, body any, wantStatus int, dst any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != wantStatus {
		var apiErr dto.ErrorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Code != "" {
			return fmt.Errorf("%s: %s", apiErr.Code, apiErr.Error)
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if dst != nil {
		return json.Unmarshal(data, dst)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
