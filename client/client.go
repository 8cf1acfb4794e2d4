// Package client is the typed HTTP client for the tablemap API. Every call
// takes a context and returns an explicit error; see errors.go for how
// failures map to user-facing messages.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dinesync/tablemap/models"
	"github.com/dinesync/tablemap/session"
)

type Client struct {
	baseURL string
	http    *http.Client
	sess    *session.Session
}

// New builds a client bound to baseURL and an explicit session. Pass a nil
// session for unauthenticated calls (login, register).
func New(baseURL string, sess *session.Session) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		sess:    sess,
	}
}

// WithSession returns a copy of the client authenticated as sess.
func (c *Client) WithSession(sess *session.Session) *Client {
	return &Client{baseURL: c.baseURL, http: c.http, sess: sess}
}

// envelope matches utils.JSONResponse on the server.
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.sess != nil && c.sess.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.sess.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Deliberately not an *APIError: the caller distinguishes
		// "no response" from an HTTP-level failure.
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && resp.StatusCode < 400 {
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return &APIError{Status: resp.StatusCode, Message: env.Message}
	}

	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}

// --- Companies ---

func (c *Client) Company(ctx context.Context, companyID uint) (models.Company, error) {
	var company models.Company
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/companies/%d", companyID), nil, &company)
	return company, err
}

// --- Tables ---

func (c *Client) TablesByRestaurant(ctx context.Context, companyID uint) ([]models.Table, error) {
	var tables []models.Table
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/tables/restaurant/%d/tables", companyID), nil, &tables)
	return tables, err
}

func (c *Client) CreateTable(ctx context.Context, table models.Table) (models.Table, error) {
	var created models.Table
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/tables/company/%d", table.CompanyID), table, &created)
	return created, err
}

func (c *Client) UpdateTable(ctx context.Context, table models.Table) (models.Table, error) {
	var updated models.Table
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/tables/%d", table.ID), table, &updated)
	return updated, err
}

func (c *Client) DeleteTable(ctx context.Context, tableID uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/tables/%d", tableID), nil, nil)
}

// PositionUpdate is one entry of the batch layout save.
type PositionUpdate struct {
	ID        uint `json:"id"`
	XPosition int  `json:"xPosition"`
	YPosition int  `json:"yPosition"`
	CompanyID uint `json:"companyId"`
}

func (c *Client) UpdateTablePositions(ctx context.Context, companyID uint, updates []PositionUpdate) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/tables/company/%d/positions", companyID), updates, nil)
}

// --- Reservations ---

// ReservationRequest is the body of both reservation creation endpoints.
type ReservationRequest struct {
	CompanyID       uint      `json:"companyId"`
	TableID         uint      `json:"tableId,omitempty"`
	UserID          uint      `json:"userId"`
	NumberOfPeople  int       `json:"numberOfPeople"`
	ReservationDate time.Time `json:"reservationDate"`
	Duration        int       `json:"duration"`
	SpecialRequests string    `json:"specialRequests"`
	Status          string    `json:"status"`
}

func (c *Client) CreateReservation(ctx context.Context, req ReservationRequest) (models.Reservation, error) {
	var res models.Reservation
	err := c.do(ctx, http.MethodPost, "/reservations", req, &res)
	return res, err
}

func (c *Client) QuickReservation(ctx context.Context, req ReservationRequest, immediate bool) (models.Reservation, error) {
	var res models.Reservation
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/reservations/quick?immediate=%t", immediate), req, &res)
	return res, err
}

func (c *Client) ReservationsByCompany(ctx context.Context, companyID uint) ([]models.Reservation, error) {
	var list []models.Reservation
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/staff/reservations/company/%d", companyID), nil, &list)
	return list, err
}

func (c *Client) CheckIn(ctx context.Context, reservationID uint) (models.Reservation, error) {
	return c.transition(ctx, reservationID, "check-in", nil)
}

func (c *Client) CheckOut(ctx context.Context, reservationID uint) (models.Reservation, error) {
	return c.transition(ctx, reservationID, "check-out", nil)
}

func (c *Client) NoShow(ctx context.Context, reservationID uint) (models.Reservation, error) {
	return c.transition(ctx, reservationID, "no-show", nil)
}

func (c *Client) Extend(ctx context.Context, reservationID uint, duration int) (models.Reservation, error) {
	body := map[string]int{"duration": duration}
	return c.transition(ctx, reservationID, "extend", body)
}

func (c *Client) Cancel(ctx context.Context, reservationID uint) (models.Reservation, error) {
	return c.transition(ctx, reservationID, "cancel", nil)
}

func (c *Client) transition(ctx context.Context, reservationID uint, action string, body interface{}) (models.Reservation, error) {
	var res models.Reservation
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/staff/reservations/%d/%s", reservationID, action), body, &res)
	return res, err
}

// --- Auth ---

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginData struct {
	Token string `json:"token"`
}

// Login authenticates and returns a ready session.
func (c *Client) Login(ctx context.Context, creds Credentials) (*session.Session, error) {
	var data loginData
	if err := c.do(ctx, http.MethodPost, "/login", creds, &data); err != nil {
		return nil, err
	}
	return session.FromToken(data.Token)
}
