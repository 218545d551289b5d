package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/activus-tech/tdsctl/internal/core/approval"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New(srv.URL, 5*time.Second, zerolog.Nop())
	c.SetToken("test-token")
	return c
}

func writeEnvelope(t *testing.T, w http.ResponseWriter, data any) {
	t.Helper()
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
		"status":  200,
		"message": "ok",
		"data":    data,
	}))
}

func TestPendingApprovals_RoleEndpoints(t *testing.T) {
	// Every role with a view must produce exactly one list fetch to
	// its configured endpoint with its configured parameters.
	for _, role := range []approval.Role{approval.RolePM, approval.RoleSME, approval.RoleL1, approval.RoleL2, approval.RoleL3, approval.RoleBU} {
		t.Run(string(role), func(t *testing.T) {
			view, ok := approval.ViewFor(role)
			require.True(t, ok)

			var calls int
			var gotPath, gotUsername, gotAuth string
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				gotPath = r.URL.Path
				gotUsername = r.URL.Query().Get("username")
				gotAuth = r.Header.Get("Authorization")
				writeEnvelope(t, w, []approval.TDS{{ID: 1, Name: "Valve TDS"}})
			}))

			list, err := c.PendingApprovals(context.Background(), view, "alice")
			require.NoError(t, err)

			assert.Equal(t, 1, calls)
			assert.Equal(t, view.ListPath, gotPath)
			assert.Equal(t, "Bearer test-token", gotAuth)
			if view.ListNeedsUsername {
				assert.Equal(t, "alice", gotUsername)
			} else {
				assert.Empty(t, gotUsername)
			}
			require.Len(t, list, 1)
			assert.Equal(t, "Valve TDS", list[0].Name)
		})
	}
}

func TestPendingApprovals_MissingCredential(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, zerolog.Nop())
	view, _ := approval.ViewFor(approval.RolePM)

	_, err := c.PendingApprovals(context.Background(), view, "alice")
	assert.ErrorIs(t, err, ErrMissingCredential)
	assert.Zero(t, calls, "no network call without a credential")
}

func TestApprove(t *testing.T) {
	var gotMethod, gotPath, gotApproved, gotUsername string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotApproved = r.URL.Query().Get("approved")
		gotUsername = r.URL.Query().Get("username")
		writeEnvelope(t, w, nil)
	}))

	view, _ := approval.ViewFor(approval.RoleL1)
	require.NoError(t, c.Approve(context.Background(), view, 42, false, "lena"))

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/api/tds/approve/l1/42", gotPath)
	assert.Equal(t, "false", gotApproved)
	assert.Equal(t, "lena", gotUsername)
}

func TestApprove_ReadOnlyView(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))

	view, _ := approval.ViewFor(approval.RoleSME)
	assert.Error(t, c.Approve(context.Background(), view, 1, true, "sam"))
}

func TestServerErrorMessageVerbatim(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"status":409,"message":"TDS already approved by L1"}`))
	}))

	view, _ := approval.ViewFor(approval.RoleL1)
	err := c.Approve(context.Background(), view, 7, true, "lena")
	require.Error(t, err)

	apiErr, ok := IsServerError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "TDS already approved by L1", apiErr.Message)
}

func TestServerErrorWithoutMessage(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	view, _ := approval.ViewFor(approval.RolePM)
	_, err := c.PendingApprovals(context.Background(), view, "alice")
	require.Error(t, err)

	apiErr, ok := IsServerError(err)
	require.True(t, ok)
	assert.Contains(t, apiErr.Error(), "502")
}

func TestLogin(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"), "login is a public endpoint")

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice", body["username"])
		assert.Equal(t, "PM", body["role"])

		writeEnvelope(t, w, "issued-token")
	}))
	c.SetToken("") // login must work without one

	token, err := c.Login(context.Background(), "alice", "s3cret", "PM")
	require.NoError(t, err)
	assert.Equal(t, "issued-token", token)
}

func TestRegister_PayloadFields(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "bob@example.com", body["emailId"])
		writeEnvelope(t, w, nil)
	}))
	c.SetToken("")

	require.NoError(t, c.Register(context.Background(), "bob", "pw", "bob@example.com", "SME"))
}

func TestPendingUsers_BareArray(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/superadmin/pending-users", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id":3,"username":"newbie","emailId":"n@example.com","role":"SME"}]`))
	}))

	users, err := c.PendingUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "newbie", users[0].Username)
	assert.Equal(t, approval.RoleSME, users[0].Role)
}

func TestApproveUser(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/superadmin/approve-user", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.EqualValues(t, 3, body["userId"])
		assert.Equal(t, true, body["approve"])
		writeEnvelope(t, w, nil)
	}))

	require.NoError(t, c.ApproveUser(context.Background(), 3, true))
}

func TestCreateTDS_MultipartForm(t *testing.T) {
	dir := t.TempDir()
	fileA := filepath.Join(dir, "a.pdf")
	fileB := filepath.Join(dir, "b.pdf")
	require.NoError(t, os.WriteFile(fileA, []byte("doc a"), 0o644))
	require.NoError(t, os.WriteFile(fileB, []byte("doc b"), 0o644))

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "sam", r.FormValue("username"))

		var dto map[string]any
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("tdsDTO")), &dto))
		assert.Equal(t, "Valve TDS", dto["tdsName"])
		assert.Equal(t, "Draft", dto["status"])
		assert.EqualValues(t, 7, dto["projectId"])

		files := r.MultipartForm.File["files"]
		require.Len(t, files, 2)
		assert.Equal(t, "a.pdf", files[0].Filename)
		assert.Equal(t, "b.pdf", files[1].Filename)

		writeEnvelope(t, w, nil)
	}))

	require.NoError(t, c.CreateTDS(context.Background(), "Valve TDS", 7, "sam", []string{fileA, fileB}))
}

func TestRecheck_MultipartForm(t *testing.T) {
	dir := t.TempDir()
	newFile := filepath.Join(dir, "fixed.pdf")
	require.NoError(t, os.WriteFile(newFile, []byte("fixed"), 0o644))

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/tds/recheck/9", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "addressed L1 remarks", r.FormValue("remarks"))
		assert.Equal(t, "sam", r.FormValue("username"))
		assert.Equal(t, "/uploads/old.pdf", r.FormValue("filesToRemove"))
		assert.Equal(t, "/uploads/keep1.pdf,/uploads/keep2.pdf", r.FormValue("filesToKeep"))
		require.Len(t, r.MultipartForm.File["files"], 1)

		writeEnvelope(t, w, nil)
	}))

	err := c.Recheck(context.Background(), 9, "sam", "addressed L1 remarks",
		[]string{"/uploads/old.pdf"},
		[]string{"/uploads/keep1.pdf", "/uploads/keep2.pdf"},
		[]string{newFile})
	require.NoError(t, err)
}

func TestReupload_QueryAndFile(t *testing.T) {
	dir := t.TempDir()
	newFile := filepath.Join(dir, "replacement.pdf")
	require.NoError(t, os.WriteFile(newFile, []byte("rep"), 0o644))

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tds/reupload/4", r.URL.Path)
		assert.Equal(t, "carol", r.URL.Query().Get("username"))
		assert.Equal(t, "false", r.URL.Query().Get("keepExisting"))
		assert.Equal(t, "0,2", r.URL.Query().Get("removeIndices"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Len(t, r.MultipartForm.File["file"], 1)

		writeEnvelope(t, w, nil)
	}))

	require.NoError(t, c.Reupload(context.Background(), 4, "carol", false, []int{0, 2}, newFile))
}

func TestFinalizePurchase_RequiresBothParts(t *testing.T) {
	dir := t.TempDir()
	order := filepath.Join(dir, "order.pdf")
	lr := filepath.Join(dir, "lr.pdf")
	require.NoError(t, os.WriteFile(order, []byte("order"), 0o644))
	require.NoError(t, os.WriteFile(lr, []byte("lr"), 0o644))

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tds/finalizePurchase/11", r.URL.Path)
		assert.Equal(t, "carol", r.URL.Query().Get("username"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Len(t, r.MultipartForm.File["orderConfirmation"], 1)
		require.Len(t, r.MultipartForm.File["lrCopy"], 1)

		writeEnvelope(t, w, nil)
	}))

	require.NoError(t, c.FinalizePurchase(context.Background(), 11, "carol", order, lr))
}

func TestDownload(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tds/download/report%20v2.pdf", r.URL.EscapedPath())
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte("%PDF-1.4 bytes"))
	}))

	var buf testBuffer
	require.NoError(t, c.Download(context.Background(), "report v2.pdf", &buf))
	assert.Equal(t, "%PDF-1.4 bytes", buf.String())
}

func TestDownload_NonSuccessIsTerminal(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"no such document"}`))
	}))

	var buf testBuffer
	err := c.Download(context.Background(), "missing.pdf", &buf)
	require.Error(t, err)
	assert.Zero(t, buf.Len(), "nothing written on failure")

	apiErr, ok := IsServerError(err)
	require.True(t, ok)
	assert.Equal(t, "no such document", apiErr.Message)
}

func TestS3Documents(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tds/s3Documents", r.URL.Path)
		assert.Equal(t, "stan", r.URL.Query().Get("stakeholderUsername"))
		assert.Equal(t, "carol", r.URL.Query().Get("contractorUsername"))
		writeEnvelope(t, w, []approval.S3Document{{Filename: "spec.pdf", Size: 2048, S3Key: "docs/spec.pdf"}})
	}))

	docs, err := c.S3Documents(context.Background(), "stan", "carol")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "docs/spec.pdf", docs[0].S3Key)
}

func TestCreateProject(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/projects/create", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Plant A", body["projectName"])
		assert.EqualValues(t, 3, body["stakeholderId"])

		assignments, ok := body["roleAssignments"].(map[string]any)
		require.True(t, ok)
		assert.Contains(t, assignments, "PM")

		writeEnvelope(t, w, nil)
	}))

	err := c.CreateProject(context.Background(), "Plant A", "Pipeline rework", map[approval.Role][]int64{
		approval.RolePM:          {1},
		approval.RoleSME:         {2},
		approval.RoleStakeholder: {3},
		approval.RoleL1:          {4},
		approval.RoleBU:          {5},
		approval.RoleContractor:  {6},
	})
	require.NoError(t, err)
}

func TestReviewProject(t *testing.T) {
	var gotPath, gotApproved string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotApproved = r.URL.Query().Get("isApproved")
		writeEnvelope(t, w, nil)
	}))

	require.NoError(t, c.ReviewProject(context.Background(), 5, true))
	assert.Equal(t, "/api/projects/review/5", gotPath)
	assert.Equal(t, "true", gotApproved)
}

func TestUpdateProjectTeam(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/projects/update/8", r.URL.Path)

		var body map[string][]int64
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []int64{10, 11}, body["L2"])
		assert.Empty(t, body["L3"])

		writeEnvelope(t, w, nil)
	}))

	require.NoError(t, c.UpdateProjectTeam(context.Background(), 8, []int64{10, 11}, nil))
}

// testBuffer is a minimal io.Writer; bytes.Buffer would work but pins
// the assertion helpers to its API.
type testBuffer struct{ data []byte }

func (b *testBuffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

func (b *testBuffer) String() string { return string(b.data) }
func (b *testBuffer) Len() int       { return len(b.data) }
