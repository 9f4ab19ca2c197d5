package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/foodlog/internal/service"
	"github.com/gin-gonic/gin"
)

type listPayload struct {
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CoverImage  string     `json:"coverImage"`
	IsDraft     bool       `json:"isDraft"`
	IsFeatured  bool       `json:"isFeatured"`
	PublishedAt *time.Time `json:"publishedAt"`
}

func (p listPayload) toInput() service.ListInput {
	return service.ListInput{
		Slug:        p.Slug,
		Title:       p.Title,
		Description: p.Description,
		CoverImage:  p.CoverImage,
		IsDraft:     p.IsDraft,
		IsFeatured:  p.IsFeatured,
		PublishedAt: p.PublishedAt,
	}
}

// listItemsPostPayload covers the three POST shapes of the items endpoint:
// add (no action), reorder and sync.
type listItemsPostPayload struct {
	Action         string   `json:"action"`
	ReviewID       string   `json:"reviewId"`
	Blurb          string   `json:"blurb"`
	OrderedItemIDs []string `json:"orderedItemIds"`
	Items          []struct {
		ID       string `json:"id"`
		ReviewID string `json:"reviewId"`
		Blurb    string `json:"blurb"`
	} `json:"items"`
}

type listItemPatchPayload struct {
	ItemID   string  `json:"itemId"`
	Blurb    *string `json:"blurb"`
	Position *int    `json:"position"`
}

func (a *API) ListLists(c *gin.Context) {
	lists, err := a.lists.ListAll()
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lists": lists})
}

// GetList accepts an id or a slug.
func (a *API) GetList(c *gin.Context) {
	list, err := a.lists.Get(strings.TrimSpace(c.Param("id")))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (a *API) CreateList(c *gin.Context) {
	var payload listPayload
	if !bindJSON(c, &payload, "Invalid list payload") {
		return
	}
	list, err := a.lists.Create(payload.toInput())
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"list": list})
}

func (a *API) UpdateList(c *gin.Context) {
	var payload listPayload
	if !bindJSON(c, &payload, "Invalid list payload") {
		return
	}
	listID, ok := a.resolveListID(c)
	if !ok {
		return
	}
	list, err := a.lists.Update(listID, payload.toInput())
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (a *API) DeleteList(c *gin.Context) {
	listID, ok := a.resolveListID(c)
	if !ok {
		return
	}
	if err := a.lists.Delete(listID); err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// PostListItems adds one item, or reorders or syncs all items depending on action.
func (a *API) PostListItems(c *gin.Context) {
	var payload listItemsPostPayload
	if !bindJSON(c, &payload, "Invalid list item payload") {
		return
	}
	listID, ok := a.resolveListID(c)
	if !ok {
		return
	}

	switch strings.TrimSpace(payload.Action) {
	case "":
		if strings.TrimSpace(payload.ReviewID) == "" {
			respondError(c, http.StatusBadRequest, "reviewId is required")
			return
		}
		item, err := a.lists.AddItem(listID, strings.TrimSpace(payload.ReviewID), payload.Blurb)
		if err != nil {
			a.respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"item": item})
	case "reorder":
		items, err := a.lists.Reorder(listID, payload.OrderedItemIDs)
		if err != nil {
			a.respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	case "sync":
		specs := make([]service.ItemSpec, 0, len(payload.Items))
		for _, item := range payload.Items {
			specs = append(specs, service.ItemSpec{ID: item.ID, ReviewID: item.ReviewID, Blurb: item.Blurb})
		}
		items, err := a.lists.SyncItems(listID, specs)
		if err != nil {
			a.respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	default:
		respondError(c, http.StatusBadRequest, "Unknown action "+payload.Action)
	}
}

func (a *API) UpdateListItem(c *gin.Context) {
	var payload listItemPatchPayload
	if !bindJSON(c, &payload, "Invalid list item payload") {
		return
	}
	if strings.TrimSpace(payload.ItemID) == "" {
		respondError(c, http.StatusBadRequest, "itemId is required")
		return
	}
	listID, ok := a.resolveListID(c)
	if !ok {
		return
	}

	item, err := a.lists.UpdateItem(listID, strings.TrimSpace(payload.ItemID), service.ItemPatch{
		Blurb:    payload.Blurb,
		Position: payload.Position,
	})
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

// DeleteListItem takes the item id from the query or a JSON body.
func (a *API) DeleteListItem(c *gin.Context) {
	itemID := strings.TrimSpace(c.Query("itemId"))
	if itemID == "" && c.Request.ContentLength != 0 {
		var payload struct {
			ItemID string `json:"itemId"`
		}
		if err := json.NewDecoder(c.Request.Body).Decode(&payload); err == nil {
			itemID = strings.TrimSpace(payload.ItemID)
		}
	}
	if itemID == "" {
		respondError(c, http.StatusBadRequest, "itemId is required")
		return
	}
	listID, ok := a.resolveListID(c)
	if !ok {
		return
	}

	if err := a.lists.RemoveItem(listID, itemID); err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (a *API) resolveListID(c *gin.Context) (string, bool) {
	list, err := a.lists.Get(strings.TrimSpace(c.Param("id")))
	if err != nil {
		a.respondServiceError(c, err)
		return "", false
	}
	return list.ID, true
}
