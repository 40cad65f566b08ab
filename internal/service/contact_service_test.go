package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/fitness-app/fitclient/internal/domain/contact"
	"github.com/fitness-app/fitclient/internal/domain/validation"
)

func validContactForm() contact.Form {
	return contact.Form{
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		Subject: "general",
		Message: "Do you offer <b>student</b> discounts?",
	}
}

func TestContactService_Submit(t *testing.T) {
	t.Parallel()
	env := loggedIn(t)
	env.backend.handle(http.MethodPost, "/contact-messages", respond(http.StatusCreated, map[string]any{"id": 1}))
	svc := NewContactService(env.client, time.Second, testLogger())

	if err := svc.Submit(context.Background(), validContactForm()); err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	reqs := env.backend.requestsTo(http.MethodPost, "/contact-messages")
	if len(reqs) != 1 {
		t.Fatalf("requests = %d, want 1", len(reqs))
	}
	if auth := reqs[0].Header.Get("Authorization"); auth != "" {
		t.Errorf("Authorization = %q, want none", auth)
	}
	var sent contact.Form
	reqs[0].decode(t, &sent)
	if sent.Message != "Do you offer bstudent/b discounts?" {
		t.Errorf("message = %q", sent.Message)
	}
	if svc.Busy() {
		t.Error("Busy() = true after Submit returned")
	}
}

func TestContactService_InvalidFormIsNotSent(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	svc := NewContactService(env.client, time.Second, testLogger())

	form := validContactForm()
	form.Message = "short"
	err := svc.Submit(context.Background(), form)

	var verr *validation.ValidationError
	if !errors.As(err, &verr) || len(verr.Field("message")) == 0 {
		t.Fatalf("error = %v, want message field error", err)
	}
	if n := env.backend.requestCount(); n != 0 {
		t.Errorf("requests = %d, want 0", n)
	}
}

func TestContactService_Timeout(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.backend.handle(http.MethodPost, "/contact-messages", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})
	svc := NewContactService(env.client, 50*time.Millisecond, testLogger())

	start := time.Now()
	err := svc.Submit(context.Background(), validContactForm())
	if !errors.Is(err, ErrContactTimeout) {
		t.Fatalf("error = %v, want ErrContactTimeout", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want wrapped DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Submit took %s, want about the timeout", elapsed)
	}
	if svc.Busy() {
		t.Error("Busy() = true after timeout")
	}
}

func TestContactService_BackendError(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.backend.handle(http.MethodPost, "/contact-messages",
		respond(http.StatusBadRequest, map[string]string{"message": "Subject not allowed"}))
	svc := NewContactService(env.client, time.Second, testLogger())

	err := svc.Submit(context.Background(), validContactForm())
	if err == nil || err.Error() != "Subject not allowed" {
		t.Fatalf("error = %v, want backend message", err)
	}
	if svc.Busy() {
		t.Error("Busy() = true after failure")
	}
}

func TestContactService_RejectsConcurrentSubmit(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	env.backend.handle(http.MethodPost, "/contact-messages", func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		writeJSON(w, http.StatusCreated, map[string]any{"id": 1})
	})
	svc := NewContactService(env.client, 5*time.Second, testLogger())

	done := make(chan error, 1)
	go func() { done <- svc.Submit(context.Background(), validContactForm()) }()
	<-entered

	if !svc.Busy() {
		t.Error("Busy() = false while a submission is in flight")
	}
	if err := svc.Submit(context.Background(), validContactForm()); !errors.Is(err, ErrContactBusy) {
		t.Errorf("second Submit() error = %v, want ErrContactBusy", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first Submit() error: %v", err)
	}
}
