package usecase_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"lumiere/internal/domain/model"
	repo "lumiere/internal/repository"
	"lumiere/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestContactSubmit(t *testing.T) {
	contacts := new(ContactRepoMock)
	uc := usecase.NewContactUsecase(contacts)

	contacts.On("Create", mock.Anything, mock.MatchedBy(func(m model.ContactMessage) bool {
		return m.Name == "Ada" && m.Email == "ada@example.com" && m.Status == model.ContactMessageUnread
	})).Return(model.ContactMessage{ID: 1}, nil).Once()

	err := uc.Submit(context.Background(), usecase.ContactInput{
		Name:    " Ada ",
		Email:   "ada@example.com",
		Subject: "Sizing",
		Message: "Do you resize rings?",
	})

	require.NoError(t, err)
	contacts.AssertExpectations(t)
}

func TestContactSubmit_Validation(t *testing.T) {
	base := usecase.ContactInput{Name: "Ada", Email: "ada@example.com", Subject: "Hi", Message: "Hello"}

	tests := []struct {
		name   string
		mutate func(in *usecase.ContactInput)
		want   string
	}{
		{"missing subject", func(in *usecase.ContactInput) { in.Subject = " " }, "all fields are required"},
		{"bad email", func(in *usecase.ContactInput) { in.Email = "ada" }, "invalid email"},
		{"too long", func(in *usecase.ContactInput) { in.Message = strings.Repeat("x", 5001) }, "message too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contacts := new(ContactRepoMock)
			in := base
			tt.mutate(&in)

			err := usecase.NewContactUsecase(contacts).Submit(context.Background(), in)

			assertHTTPError(t, err, http.StatusBadRequest, tt.want)
			contacts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestContactList(t *testing.T) {
	contacts := new(ContactRepoMock)
	contacts.On("List", mock.Anything, 100).Return(nil, errDB).Once()

	msgs, err := usecase.NewContactUsecase(contacts).List(context.Background())

	assertHTTPError(t, err, http.StatusInternalServerError, "db error")
	assert.NotNil(t, msgs)
}

func TestContactMarkRead(t *testing.T) {
	contacts := new(ContactRepoMock)
	contacts.On("UpdateStatus", mock.Anything, int64(7), model.ContactMessageRead).Return(nil).Once()
	contacts.On("UpdateStatus", mock.Anything, int64(99), model.ContactMessageRead).Return(repo.ErrNotFound).Once()
	uc := usecase.NewContactUsecase(contacts)

	require.NoError(t, uc.MarkRead(context.Background(), 7))

	err := uc.MarkRead(context.Background(), 99)
	assertHTTPError(t, err, http.StatusNotFound, "message not found")
	contacts.AssertExpectations(t)
}

func TestContactDelete(t *testing.T) {
	contacts := new(ContactRepoMock)
	contacts.On("Delete", mock.Anything, int64(7)).Return(nil).Once()
	contacts.On("Delete", mock.Anything, int64(99)).Return(repo.ErrNotFound).Once()
	contacts.On("Delete", mock.Anything, int64(8)).Return(errDB).Once()
	uc := usecase.NewContactUsecase(contacts)

	require.NoError(t, uc.Delete(context.Background(), 7))
	assertHTTPError(t, uc.Delete(context.Background(), 99), http.StatusNotFound, "message not found")
	assertHTTPError(t, uc.Delete(context.Background(), 8), http.StatusInternalServerError, "db error")
	contacts.AssertExpectations(t)
}
