package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/UnknownOlympus/hestia/internal/models"
)

// ListParams are the query parameters of the list endpoint. Zero values are omitted.
type ListParams struct {
	Page       int
	PageSize   int
	Search     string
	Department string
	Ordering   string // Sort key, "-" prefixed for descending
}

func (p ListParams) values() url.Values {
	query := url.Values{}
	if p.Page > 0 {
		query.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		query.Set("page_size", strconv.Itoa(p.PageSize))
	}
	if p.Search != "" {
		query.Set("search", p.Search)
	}
	if p.Department != "" {
		query.Set("department", p.Department)
	}
	if p.Ordering != "" {
		query.Set("ordering", p.Ordering)
	}
	return query
}

// Page is one page of the employee list together with the total server count.
type Page struct {
	Results []models.Employee `json:"results"`
	Count   int               `json:"count"`
}

// UnmarshalJSON accepts both the paginated envelope and a bare array.
func (p *Page) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var rows []models.Employee
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return err
		}
		p.Results = rows
		p.Count = len(rows)
		return nil
	}

	type envelope Page
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return err
	}
	*p = Page(env)
	if p.Count == 0 {
		p.Count = len(p.Results)
	}
	return nil
}

// List fetches one page of employees.
func (c *Client) List(ctx context.Context, params ListParams) (Page, error) {
	path := "/employees/all/"
	if query := params.values().Encode(); query != "" {
		path += "?" + query
	}

	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return Page{}, err
	}

	resp, err := c.do(ctx, OpList, req)
	if err != nil {
		return Page{}, err
	}
	defer resp.Body.Close()

	var page Page
	if err = json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return Page{}, fmt.Errorf("%s: failed to decode response: %w", OpList, err)
	}
	return page, nil
}

// Get fetches one employee. A missing employee yields ErrNotFound.
func (c *Client) Get(ctx context.Context, id int) (models.Employee, error) {
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/employees/%d/", id), nil)
	if err != nil {
		return models.Employee{}, err
	}

	resp, err := c.do(ctx, OpGet, req)
	if err != nil {
		return models.Employee{}, err
	}
	defer resp.Body.Close()

	var employee models.Employee
	if err = json.NewDecoder(resp.Body).Decode(&employee); err != nil {
		return models.Employee{}, fmt.Errorf("%s: failed to decode response: %w", OpGet, err)
	}
	return employee, nil
}

// Create posts a new employee and returns the stored record with its server-assigned id.
func (c *Client) Create(ctx context.Context, employee models.Employee) (models.Employee, error) {
	employee.ID = 0
	employee.CreatedAt = nil
	employee.UpdatedAt = nil

	req, err := c.newJSONRequest(ctx, http.MethodPost, "/employees/", employee)
	if err != nil {
		return models.Employee{}, err
	}

	resp, err := c.do(ctx, OpCreate, req)
	if err != nil {
		return models.Employee{}, err
	}
	defer resp.Body.Close()

	var created models.Employee
	if err = json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return models.Employee{}, fmt.Errorf("%s: failed to decode response: %w", OpCreate, err)
	}
	return created, nil
}

// Update patches the employee with the given id. The API wraps the stored record in {"data": ...}.
func (c *Client) Update(ctx context.Context, id int, employee models.Employee) (models.Employee, error) {
	employee.CreatedAt = nil
	employee.UpdatedAt = nil

	req, err := c.newJSONRequest(ctx, http.MethodPatch, fmt.Sprintf("/employees/%d/edit/", id), employee)
	if err != nil {
		return models.Employee{}, err
	}

	resp, err := c.do(ctx, OpUpdate, req)
	if err != nil {
		return models.Employee{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Employee{}, fmt.Errorf("%s: failed to read response: %w", OpUpdate, err)
	}

	var wrapped struct {
		Data *models.Employee `json:"data"`
	}
	if err = json.Unmarshal(body, &wrapped); err != nil {
		return models.Employee{}, fmt.Errorf("%s: failed to decode response: %w", OpUpdate, err)
	}
	if wrapped.Data != nil {
		return *wrapped.Data, nil
	}

	var updated models.Employee
	if err = json.Unmarshal(body, &updated); err != nil {
		return models.Employee{}, fmt.Errorf("%s: failed to decode response: %w", OpUpdate, err)
	}
	return updated, nil
}

// Delete removes the employee with the given id on the server.
func (c *Client) Delete(ctx context.Context, id int) error {
	req, err := c.newRequest(ctx, http.MethodDelete, fmt.Sprintf("/employees/%d/", id), nil)
	if err != nil {
		return err
	}

	resp, err := c.do(ctx, OpDelete, req)
	if err != nil {
		return err
	}
	drain(resp)
	return nil
}

// Import uploads a spreadsheet as the multipart field "file".
func (c *Client) Import(ctx context.Context, filename string, file io.Reader) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("%s: failed to create form file: %w", OpImport, err)
	}
	if _, err = io.Copy(part, file); err != nil {
		return fmt.Errorf("%s: failed to copy file: %w", OpImport, err)
	}
	if err = writer.Close(); err != nil {
		return fmt.Errorf("%s: failed to close multipart writer: %w", OpImport, err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/employees/import/", &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.do(ctx, OpImport, req)
	if err != nil {
		return err
	}
	drain(resp)
	return nil
}

// Export downloads the server generated spreadsheet.
func (c *Client) Export(ctx context.Context) (*bytes.Buffer, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/employees/export/", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, OpExport, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err = io.Copy(&buf, resp.Body); err != nil {
		return nil, fmt.Errorf("%s: failed to read response: %w", OpExport, err)
	}
	return &buf, nil
}

// Ping checks that the API answers. Rate limiting still proves reachability.
func (c *Client) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/employees/all/?page=1&page_size=1", nil)
	if err != nil {
		return err
	}

	resp, err := c.do(ctx, OpPing, req)
	if err != nil {
		if errors.Is(err, ErrRateLimited) {
			return nil
		}
		return err
	}
	drain(resp)
	return nil
}
