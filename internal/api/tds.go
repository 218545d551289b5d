package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/activus-tech/tdsctl/internal/core/approval"
)

// PendingApprovals fetches the TDS records waiting on the given role,
// using the view's configured endpoint and parameters.
func (c *Client) PendingApprovals(ctx context.Context, view approval.View, username string) ([]approval.TDS, error) {
	query := url.Values{}
	if view.ListNeedsUsername {
		query.Set("username", username)
	}

	var list []approval.TDS
	if err := c.get(ctx, view.ListPath, query, &list); err != nil {
		return nil, fmt.Errorf("fetch pending approvals: %w", err)
	}
	return list, nil
}

// Approve submits an approve (true) or reject (false) decision for one
// TDS through the view's action endpoint.
func (c *Client) Approve(ctx context.Context, view approval.View, id int64, approved bool, username string) error {
	if !view.CanApprove() {
		return fmt.Errorf("role %s cannot approve from this view", view.Role)
	}

	query := url.Values{}
	query.Set("approved", strconv.FormatBool(approved))
	if view.ApproveNeedsUsername {
		query.Set("username", username)
	}

	path := fmt.Sprintf("%s/%d", view.ApprovePath, id)
	if err := c.putJSON(ctx, path, query, nil); err != nil {
		return fmt.Errorf("submit decision: %w", err)
	}
	return nil
}

// ApprovedTDS lists fully approved TDS records visible to username.
func (c *Client) ApprovedTDS(ctx context.Context, username string) ([]approval.TDS, error) {
	return c.tdsList(ctx, "/api/tds/approved", username)
}

// PMApprovedTDS lists TDS records past PM approval and awaiting the
// contractor's purchase finalization.
func (c *Client) PMApprovedTDS(ctx context.Context, username string) ([]approval.TDS, error) {
	return c.tdsList(ctx, "/api/tds/pmApproved", username)
}

// RejectedBySME lists TDS records bounced back by SME review, awaiting
// a contractor document resubmission.
func (c *Client) RejectedBySME(ctx context.Context, username string) ([]approval.TDS, error) {
	return c.tdsList(ctx, "/api/tds/rejectedBySME", username)
}

// NeedToRecheck lists rejected TDS records awaiting the SME's recheck
// cycle.
func (c *Client) NeedToRecheck(ctx context.Context, username string) ([]approval.TDS, error) {
	return c.tdsList(ctx, "/api/tds/need-to-recheck", username)
}

func (c *Client) tdsList(ctx context.Context, path, username string) ([]approval.TDS, error) {
	query := url.Values{}
	query.Set("username", username)

	var list []approval.TDS
	if err := c.get(ctx, path, query, &list); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	return list, nil
}

// tdsDTO is the JSON part of a TDS creation form. The server fills in
// documentPath from the uploaded files.
type tdsDTO struct {
	TDSName      string `json:"tdsName"`
	DocumentPath string `json:"documentPath"`
	Status       string `json:"status"`
	ProjectID    int64  `json:"projectId"`
}

// CreateTDS submits a new TDS in Draft status with its initial
// documents.
func (c *Client) CreateTDS(ctx context.Context, name string, projectID int64, username string, files []string) error {
	dto, err := json.Marshal(tdsDTO{TDSName: name, DocumentPath: "", Status: "Draft", ProjectID: projectID})
	if err != nil {
		return fmt.Errorf("marshal tdsDTO: %w", err)
	}

	body, contentType, err := newMultipartBody().
		field("tdsDTO", string(dto)).
		field("username", username).
		files("files", files).
		close()
	if err != nil {
		return err
	}

	req := request{method: http.MethodPost, path: "/api/tds/create", body: body, contentType: contentType}
	if err := c.do(ctx, req, nil); err != nil {
		return fmt.Errorf("create tds: %w", err)
	}
	return nil
}

// Recheck resubmits a rejected TDS: remarks answering the rejection,
// the kept and removed existing documents, and any new uploads.
func (c *Client) Recheck(ctx context.Context, id int64, username, remarks string, filesToRemove, filesToKeep, newFiles []string) error {
	body, contentType, err := newMultipartBody().
		field("remarks", remarks).
		field("username", username).
		field("filesToRemove", strings.Join(filesToRemove, ",")).
		field("filesToKeep", strings.Join(filesToKeep, ",")).
		files("files", newFiles).
		close()
	if err != nil {
		return err
	}

	path := fmt.Sprintf("/api/tds/recheck/%d", id)
	req := request{method: http.MethodPut, path: path, body: body, contentType: contentType}
	if err := c.do(ctx, req, nil); err != nil {
		return fmt.Errorf("recheck tds: %w", err)
	}
	return nil
}

// Reupload replaces or prunes a TDS's documents after an SME
// rejection. filePath may be empty when only keeping/removing existing
// documents.
func (c *Client) Reupload(ctx context.Context, id int64, username string, keepExisting bool, removeIndices []int, filePath string) error {
	indices := make([]string, 0, len(removeIndices))
	for _, i := range removeIndices {
		indices = append(indices, strconv.Itoa(i))
	}

	query := url.Values{}
	query.Set("username", username)
	query.Set("keepExisting", strconv.FormatBool(keepExisting))
	query.Set("removeIndices", strings.Join(indices, ","))

	m := newMultipartBody()
	if filePath != "" {
		m.file("file", filePath)
	}
	body, contentType, err := m.close()
	if err != nil {
		return err
	}

	path := fmt.Sprintf("/api/tds/reupload/%d", id)
	req := request{method: http.MethodPost, path: path, query: query, body: body, contentType: contentType}
	if err := c.do(ctx, req, nil); err != nil {
		return fmt.Errorf("reupload document: %w", err)
	}
	return nil
}

// FinalizePurchase completes the purchase for a fully approved TDS.
// Both documents are mandatory; callers validate before reaching here.
func (c *Client) FinalizePurchase(ctx context.Context, id int64, username, orderConfirmation, lrCopy string) error {
	body, contentType, err := newMultipartBody().
		file("orderConfirmation", orderConfirmation).
		file("lrCopy", lrCopy).
		close()
	if err != nil {
		return err
	}

	query := url.Values{}
	query.Set("username", username)

	path := fmt.Sprintf("/api/tds/finalizePurchase/%d", id)
	req := request{method: http.MethodPost, path: path, query: query, body: body, contentType: contentType}
	if err := c.do(ctx, req, nil); err != nil {
		return fmt.Errorf("finalize purchase: %w", err)
	}
	return nil
}

// Download streams the named document into dst. fileName is the
// display name, not the full storage path.
func (c *Client) Download(ctx context.Context, fileName string, dst io.Writer) error {
	return c.downloadRaw(ctx, "/api/tds/download/"+url.PathEscape(fileName), nil, dst)
}

// S3Documents lists the shared stakeholder/contractor document
// repository.
func (c *Client) S3Documents(ctx context.Context, stakeholderUsername, contractorUsername string) ([]approval.S3Document, error) {
	query := url.Values{}
	query.Set("stakeholderUsername", stakeholderUsername)
	query.Set("contractorUsername", contractorUsername)

	var docs []approval.S3Document
	if err := c.get(ctx, "/api/tds/s3Documents", query, &docs); err != nil {
		return nil, fmt.Errorf("fetch s3 documents: %w", err)
	}
	return docs, nil
}

// DownloadS3 streams a repository document by its storage key into dst.
func (c *Client) DownloadS3(ctx context.Context, s3Key string, dst io.Writer) error {
	query := url.Values{}
	query.Set("s3Key", s3Key)
	return c.downloadRaw(ctx, "/api/tds/downloadFromS3", query, dst)
}

// downloadRaw fetches a binary resource with the bearer credential
// attached and copies the body to dst without envelope decoding.
func (c *Client) downloadRaw(ctx context.Context, path string, query url.Values, dst io.Writer) error {
	if c.token == "" {
		return ErrMissingCredential
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return fmt.Errorf("fetch document: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bits, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return c.serverError(resp.StatusCode, bits)
	}

	if _, err := io.Copy(dst, resp.Body); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}
