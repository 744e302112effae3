package stubserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func withUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey, userID)
}

func userFrom(r *http.Request) string {
	id, _ := r.Context().Value(userKey).(string)
	return id
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeEnveloped wraps data in the {success,data} envelope used by part of
// the real API.
func writeEnveloped(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, map[string]interface{}{
		"success": status >= 200 && status < 300,
		"data":    data,
	})
}

func decode(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decode(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid body"})
		return
	}

	// Credentials are fake: the email local part is the user ID and every
	// password is "secret".
	userID := body.Email
	if i := strings.IndexByte(userID, '@'); i >= 0 {
		userID = userID[:i]
	}

	s.mu.Lock()
	u, ok := s.users[userID]
	if !ok || body.Password != "secret" {
		s.mu.Unlock()
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return
	}
	token := "tok-" + uuid.New().String()
	s.tokens[token] = u.ID
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  map[string]string{"id": u.ID, "name": u.Name},
	})
}

// handleLists serves GET /api/friends with the real API's mixed encodings:
// friends keyed by "_id", sent counterparts as nested objects, received
// counterparts as bare ID strings.
func (s *Server) handleLists(w http.ResponseWriter, r *http.Request) {
	caller := userFrom(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	friends := []map[string]string{}
	for id := range s.friends[caller] {
		friends = append(friends, map[string]string{"_id": id, "name": s.users[id].Name})
	}

	sent := []map[string]interface{}{}
	received := []map[string]interface{}{}
	for _, req := range s.requests {
		switch {
		case req.From == caller:
			sent = append(sent, map[string]interface{}{
				"id":        req.ID,
				"toUserId":  map[string]string{"id": req.To, "name": s.users[req.To].Name},
				"status":    req.Status,
				"createdAt": req.CreatedAt.Format(time.RFC3339),
			})
		case req.To == caller && req.Status == "pending":
			received = append(received, map[string]interface{}{
				"_id":        req.ID,
				"fromUserId": req.From,
				"status":     req.Status,
				"createdAt":  req.CreatedAt.Format(time.RFC3339),
			})
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"friends":  friends,
		"sent":     sent,
		"received": received,
	})
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	caller := userFrom(r)
	var body struct {
		UserID string `json:"userId"`
	}
	if err := decode(r, &body); err != nil || body.UserID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "userId is required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[body.UserID]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "User not found"})
		return
	}
	if s.friends[caller][body.UserID] {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Already friends with this user"})
		return
	}
	for _, req := range s.requests {
		if req.Status != "pending" {
			continue
		}
		if (req.From == caller && req.To == body.UserID) || (req.From == body.UserID && req.To == caller) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Friend request already sent"})
			return
		}
	}

	id := uuid.New().String()
	s.requests[id] = &request{ID: id, From: caller, To: body.UserID, Status: "pending", CreatedAt: time.Now()}

	writeEnveloped(w, http.StatusCreated, map[string]interface{}{
		"message": "Friend request sent",
		"request": map[string]string{"_id": id},
	})
}

func (s *Server) handleRespond(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RequestID string `json:"requestId"`
		Action    string `json:"action"`
	}
	if err := decode(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid body"})
		return
	}
	s.respond(w, r, body.RequestID, body.Action == "accept")
}

func (s *Server) handleRespondLegacy(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RequestID string `json:"requestId"`
		Status    string `json:"status"`
	}
	if err := decode(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid body"})
		return
	}
	s.respond(w, r, body.RequestID, body.Status == "accepted")
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, requestID string, accept bool) {
	caller := userFrom(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[requestID]
	if !ok || req.To != caller {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Request not found"})
		return
	}
	if req.Status != "pending" {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "Request already responded"})
		return
	}

	if accept {
		s.link(req.From, req.To)
		delete(s.requests, requestID)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Friend request accepted"})
		return
	}
	req.Status = "rejected"
	writeJSON(w, http.StatusOK, map[string]string{"message": "Friend request rejected"})
}

func (s *Server) handleCancelByID(w http.ResponseWriter, r *http.Request) {
	caller := userFrom(r)
	var body struct {
		RequestID string `json:"requestId"`
	}
	if err := decode(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[body.RequestID]
	if !ok || req.From != caller || req.Status != "pending" {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Request not found"})
		return
	}
	delete(s.requests, body.RequestID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Friend request cancelled"})
}

func (s *Server) handleCancelByTarget(w http.ResponseWriter, r *http.Request) {
	caller := userFrom(r)
	var body struct {
		TargetUserID string `json:"targetUserId"`
	}
	if err := decode(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, req := range s.requests {
		if req.From == caller && req.To == body.TargetUserID && req.Status == "pending" {
			delete(s.requests, id)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Friend request cancelled"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Request not found"})
}

func (s *Server) handleUnfriend(w http.ResponseWriter, r *http.Request) {
	caller := userFrom(r)
	var body struct {
		FriendID string `json:"friendId"`
	}
	if err := decode(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.friends[caller][body.FriendID] {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Not friends with this user"})
		return
	}
	s.unlink(caller, body.FriendID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Friend removed"})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	caller := userFrom(r)
	target := chi.URLParam(r, "id")

	s.mu.Lock()
	isFriend := s.friends[caller][target]
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]bool{"isFriend": isFriend})
}

// handleNotifications derives friend_request notifications from pending
// received requests; the stub keeps no separate notification state.
func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	caller := userFrom(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	notifs := []map[string]interface{}{}
	for _, req := range s.requests {
		if req.To != caller || req.Status != "pending" {
			continue
		}
		notifs = append(notifs, map[string]interface{}{
			"id":        "notif-" + req.ID,
			"type":      "friend_request",
			"message":   s.users[req.From].Name + " sent you a friend request",
			"fromId":    req.From,
			"read":      false,
			"createdAt": req.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"notifications": notifs})
}

func (s *Server) handleNotificationsRead(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}
