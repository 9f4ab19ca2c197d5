package handler

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/foodlog/internal/apperr"
	"github.com/foodlog/internal/db"
	"github.com/foodlog/internal/feed"
	"github.com/foodlog/internal/maps"
	"github.com/gin-gonic/gin"
)

type reviewPage struct {
	Review        *db.Review    `json:"review"`
	ContentHTML   template.HTML `json:"contentHtml"`
	CoverPosition string        `json:"coverPosition,omitempty"`
	PriceLabel    string        `json:"priceLabel,omitempty"`
	Map           maps.Image    `json:"map"`
}

type listPageItem struct {
	ID       string     `json:"id"`
	Position int        `json:"position"`
	Label    string     `json:"label,omitempty"`
	Blurb    string     `json:"blurb"`
	Review   *db.Review `json:"review"`
}

type listPage struct {
	List  *db.List       `json:"list"`
	Items []listPageItem `json:"items"`
	Map   maps.Image     `json:"map"`
}

// Feed returns one page of the public home feed.
func (a *API) Feed(c *gin.Context) {
	reviews, err := a.reviews.ListPublished()
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	lists, err := a.lists.ListPublished()
	if err != nil {
		a.respondServiceError(c, err)
		return
	}

	result := feed.Compose(reviews, lists, feed.Options{
		Cuisine:  strings.TrimSpace(c.Query("cuisine")),
		Location: strings.TrimSpace(c.Query("location")),
		Page:     queryInt(c, "page", 1),
		PageSize: a.feedPageSize,
	})
	c.JSON(http.StatusOK, result)
}

func (a *API) Stats(c *gin.Context) {
	stats, err := a.stats.Compute()
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ReviewPage renders a published review. Drafts are indistinguishable from
// unknown slugs.
func (a *API) ReviewPage(c *gin.Context) {
	review, err := a.reviews.GetBySlug(strings.TrimSpace(c.Param("slug")))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	if review.IsDraft {
		a.respondServiceError(c, apperr.NotFound("Review not found"))
		return
	}

	content, err := renderMarkdown(review.Content)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}

	page := reviewPage{
		Review:      review,
		ContentHTML: content,
		PriceLabel:  review.PriceLabel(),
		Map: a.maps.Single(maps.Point{
			Lat:  review.Lat,
			Lng:  review.Lng,
			Name: review.RestaurantName,
		}),
	}
	if review.CoverImageCrop != nil {
		page.CoverPosition = review.CoverImageCrop.ObjectPosition()
	}
	c.JSON(http.StatusOK, page)
}

// ListPage renders a published list with its published reviews in order.
func (a *API) ListPage(c *gin.Context) {
	list, err := a.lists.Get(strings.TrimSpace(c.Param("slug")))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	if list.IsDraft {
		a.respondServiceError(c, apperr.NotFound("List not found"))
		return
	}

	page := listPage{List: list, Items: make([]listPageItem, 0, len(list.Items))}
	points := make([]maps.Point, 0, len(list.Items))
	for _, item := range list.Items {
		if item.Review == nil || item.Review.IsDraft {
			continue
		}
		page.Items = append(page.Items, listPageItem{
			ID:       item.ID,
			Position: len(page.Items),
			Blurb:    item.Blurb,
			Review:   item.Review,
		})
		points = append(points, maps.Point{
			Lat:  item.Review.Lat,
			Lng:  item.Review.Lng,
			Name: item.Review.RestaurantName,
		})
	}

	page.Map = a.maps.Multi(points)
	labelItems(page.Items, page.Map.Points)

	list.Items = nil
	c.JSON(http.StatusOK, page)
}

// labelItems copies marker labels onto items in order. Items without
// coordinates have no marker and keep an empty label.
func labelItems(items []listPageItem, points []maps.Point) {
	next := 0
	for i := range items {
		if next >= len(points) {
			return
		}
		if !items[i].Review.IsGeocoded() {
			continue
		}
		items[i].Label = points[next].Label
		next++
	}
}
