package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dulchik/mailbot/store"
)

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(NewServer(nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestEmails(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "emails.db"))
	require.NoError(t, err)
	defer st.Close()
	for _, id := range []string{"a", "b", "c"} {
		_, err := st.Insert(context.Background(), store.EmailRecord{GmailID: id, Folder: "INBOX"})
		require.NoError(t, err)
	}

	srv := httptest.NewServer(NewServer(st))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/emails?limit=2")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Emails []store.EmailRecord `json:"emails"`
		Total  int64               `json:"total"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, int64(3), body.Total)
	require.Len(t, body.Emails, 2)
	assert.Equal(t, "c", body.Emails[0].GmailID)

	bad, err := http.Get(srv.URL + "/api/emails?limit=zero")
	require.NoError(t, err)
	bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}
