package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"scan-annotator/internal/mask"
)

func TestFetchMaskAbsentIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	data, found, err := c.FetchMask(context.Background(), uuid.New(), mask.TypeRegion)
	require.NoError(t, err)
	require.False(t, found)
	require.Nil(t, data)
}

func TestFetchMaskServerErrorIsSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	_, found, err := c.FetchMask(context.Background(), uuid.New(), mask.TypeBackfatLine)
	require.Error(t, err)
	require.False(t, found)
}

func TestFetchMaskReturnsBytes(t *testing.T) {
	scanID := uuid.New()
	want := []byte{0x89, 'P', 'N', 'G'}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/scans/"+scanID.String()+"/masks/region", r.URL.Path)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Write(want)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	data, found, err := c.FetchMask(context.Background(), scanID, mask.TypeRegion)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, want, data)
}

func TestSaveMaskReturnsUpdatedScan(t *testing.T) {
	scanID := uuid.New()
	assetID := uuid.New()
	raster := []byte("raster-bytes")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/scans/"+scanID.String()+"/masks/backfat_line", r.URL.Path)
		require.Equal(t, "application/octet-stream", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.Equal(t, raster, body)

		json.NewEncoder(w).Encode(Scan{
			ID:                 scanID,
			CaptureID:          "cap-1",
			Status:             StatusProcessed,
			BackfatLineAssetID: &assetID,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	scan, err := c.SaveMask(context.Background(), scanID, mask.TypeBackfatLine, raster)
	require.NoError(t, err)
	require.Equal(t, scanID, scan.ID)
	require.True(t, scan.HasMask(mask.TypeBackfatLine))
	require.False(t, scan.HasMask(mask.TypeRegion))
}

func TestUnauthorizedIsSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bad")
	_, err := c.FetchScan(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrUnauthorized)

	_, _, err = c.FetchMask(context.Background(), uuid.New(), mask.TypeRegion)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestUserCanAnnotate(t *testing.T) {
	tests := []struct {
		roles []string
		want  bool
	}{
		{[]string{"admin"}, true},
		{[]string{"annotator"}, true},
		{[]string{"viewer"}, false},
		{nil, false},
	}
	for _, tt := range tests {
		u := &User{Roles: tt.roles}
		require.Equal(t, tt.want, u.CanAnnotate(), "roles %v", tt.roles)
	}
}
