// internal/facilityapi/client.go
package facilityapi

import (
	"context"
	"encoding/json"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "petopia-search/internal/common/errors"
	commonhttp "petopia-search/internal/common/http"
	"petopia-search/internal/common/logger"
	"petopia-search/internal/common/validation"
	"petopia-search/internal/models"
	"petopia-search/internal/search/query"
)

const (
	PathRegions          = "/pet_facilities/regions"
	PathSubRegions       = "/pet_facilities/sigungu"
	PathCategories       = "/pet_facilities/categories/category2"
	PathSearch           = "/pet_facilities/search"
	PathBoundsFiltered   = "/pet_facilities/search/bounds/filtered"
	PathBoundsUnfiltered = "/pet_facilities/search/bounds"
	PathFavorites        = "/favorite/mine"
	PathSuggestions      = "/pet_facilities/search/suggestions"
)

var tracer = otel.Tracer("petopia-search/facilityapi")

// Client calls the Petopia REST backend. It implements filters.OptionSource
// and the orchestrator's Backend.
type Client struct {
	http   *commonhttp.Client
	logger logger.Logger
}

func NewClient(httpClient *commonhttp.Client, log logger.Logger) *Client {
	return &Client{
		http:   httpClient,
		logger: log.WithFields(map[string]interface{}{"component": "facility-api"}),
	}
}

func (c *Client) Regions(ctx context.Context) ([]string, error) {
	var out []string
	err := c.get(ctx, PathRegions, "", validation.StringList, &out)
	return out, err
}

func (c *Client) SubRegions(ctx context.Context, region string) ([]string, error) {
	var out []string
	q := url.Values{"region": {region}}
	err := c.get(ctx, PathSubRegions, q.Encode(), validation.StringList, &out)
	return out, err
}

func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var out []string
	err := c.get(ctx, PathCategories, "", validation.StringList, &out)
	return out, err
}

// Search runs the paginated facility search.
func (c *Client) Search(ctx context.Context, params query.Params) (*models.FacilityPage, error) {
	var page models.FacilityPage
	if err := c.get(ctx, PathSearch, params.Encode(), validation.FacilityPage, &page); err != nil {
		return nil, err
	}
	if page.Content == nil {
		page.Content = []models.Facility{}
	}
	return &page, nil
}

// SearchBoundsFiltered searches the viewport with every active filter. A
// backend without this endpoint answers 404; see apperrors.IsNotFound.
func (c *Client) SearchBoundsFiltered(ctx context.Context, params query.Params) ([]models.Facility, error) {
	return c.facilityList(ctx, PathBoundsFiltered, params)
}

// SearchBounds searches the viewport with bounds and free text only.
func (c *Client) SearchBounds(ctx context.Context, params query.Params) ([]models.Facility, error) {
	return c.facilityList(ctx, PathBoundsUnfiltered, params)
}

// Favorites lists the caller's favorite facilities. It needs a bearer token.
func (c *Client) Favorites(ctx context.Context) ([]models.Facility, error) {
	return c.facilityList(ctx, PathFavorites, nil)
}

func (c *Client) Suggestions(ctx context.Context, params query.Params) ([]string, error) {
	var out []string
	err := c.get(ctx, PathSuggestions, params.Encode(), validation.StringList, &out)
	return out, err
}

func (c *Client) facilityList(ctx context.Context, path string, params query.Params) ([]models.Facility, error) {
	var out []models.Facility
	if err := c.get(ctx, path, params.Encode(), validation.FacilityList, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Facility{}
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path, rawQuery string, contract *validation.Contract, out interface{}) error {
	ctx, span := tracer.Start(ctx, "GET "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", "GET"),
			attribute.String("url.path", path),
		),
	)
	defer span.End()

	body, err := c.http.GetRaw(ctx, path, rawQuery)
	if err != nil {
		if status := apperrors.StatusOf(err); status != 0 {
			span.SetAttributes(attribute.Int("http.response.status_code", status))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := contract.Validate(body); err != nil {
		c.logger.Warn("backend response violates contract", map[string]interface{}{
			"path":     path,
			"contract": contract.Name(),
			"error":    err.Error(),
		})
		span.SetStatus(codes.Error, "contract violated")
		return apperrors.NewInvalidResponseError(path, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		span.SetStatus(codes.Error, "decode failed")
		return apperrors.NewInvalidResponseError(path, err)
	}
	return nil
}
