package main

import (
	"fmt"
	"log"
	"time"

	"github.com/foodlog/internal/authoring"
	"github.com/foodlog/internal/config"
	"github.com/foodlog/internal/db"
	"github.com/foodlog/internal/service"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

type seedReview struct {
	name      string
	address   string
	lat, lng  float64
	location  string
	rating    float64
	price     int
	cuisines  []string
	vibes     []string
	favorites []string
	misses    []string
	images    []string
	content   string
	daysAgo   int
	draft     bool
	featured  bool
}

var seedReviews = []seedReview{
	{
		name: "Pho Bac Sup Shop", address: "1314 S King St, Seattle, WA", lat: 47.5984, lng: -122.3151, location: "Little Saigon",
		rating: 9.1, price: 2, cuisines: []string{"Vietnamese"}, vibes: []string{"Casual", "Bright"},
		favorites: []string{"Phorrito", "Rare beef pho"}, misses: []string{"Spring rolls"},
		images:  []string{"https://images.unsplash.com/photo-1582878826629-29b7ad1cdc43", "https://images.unsplash.com/photo-1555126634-323283e090fa"},
		content: "The broth is **clear and deep**.\nGo early on weekends.", daysAgo: 2, featured: true,
	},
	{
		name: "Il Corvo", address: "217 James St, Seattle, WA", lat: 47.6026, lng: -122.3331, location: "Pioneer Square",
		rating: 8.7, price: 2, cuisines: []string{"Italian"}, vibes: []string{"Lunch only"},
		favorites: []string{"Pappardelle bolognese"},
		images:    []string{"https://images.unsplash.com/photo-1551183053-bf91a1d81141"},
		content:   "Three pastas a day, written on the board.", daysAgo: 9,
	},
	{
		name: "Un Bien", address: "7302 15th Ave NW, Seattle, WA", lat: 47.6815, lng: -122.3763, location: "Ballard",
		rating: 9.4, price: 1, cuisines: []string{"Caribbean"}, vibes: []string{"Takeout"},
		favorites: []string{"Caribbean roast sandwich"}, misses: []string{"Corn"},
		images:  []string{"https://images.unsplash.com/photo-1553909489-cd47e0907980"},
		content: "Bring napkins. Many napkins.", daysAgo: 15,
	},
	{
		name: "Canlis", address: "2576 Aurora Ave N, Seattle, WA", lat: 47.6431, lng: -122.3467, location: "Queen Anne",
		rating: 8.9, price: 4, cuisines: []string{"Pacific Northwest"}, vibes: []string{"Special occasion", "Views"},
		favorites: []string{"Canlis salad", "Peter Canlis prawns"},
		images:    []string{"https://images.unsplash.com/photo-1414235077428-338989a2e8c0", "https://images.unsplash.com/photo-1517248135467-4c7edcad34c4"},
		content:   "| course | highlight |\n| --- | --- |\n| first | salad |\n| main | duck |", daysAgo: 30,
	},
	{
		name: "Taurus Ox", address: "1523 E Madison St, Seattle, WA", lat: 47.6155, lng: -122.3117, location: "Capitol Hill",
		rating: 8.2, price: 2, cuisines: []string{"Lao"}, vibes: []string{"Lively"},
		favorites: []string{"Khao soi", "Larb"},
		images:    []string{"https://images.unsplash.com/photo-1569718212165-3a8278d5f624"},
		content:   "Order the jeow sampler for the table.", daysAgo: 44,
	},
	{
		name: "Paseo", address: "4225 Fremont Ave N, Seattle, WA", lat: 47.6581, lng: -122.3502, location: "Fremont",
		rating: 8.5, price: 1, cuisines: []string{"Caribbean"}, vibes: []string{"Takeout", "Line out the door"},
		favorites: []string{"Cuban roast"},
		images:    []string{"https://images.unsplash.com/photo-1509722747041-616f39b57569"},
		content:   "Still worth the wait.", daysAgo: 60,
	},
	{
		name: "Kedai Makan", address: "1802 Bellevue Ave, Seattle, WA", lat: 47.6175, lng: -122.3266, location: "Capitol Hill",
		rating: 7.8, price: 2, cuisines: []string{"Malaysian"}, vibes: []string{"Casual"},
		favorites: []string{"Roti jala"},
		content:   "Notes only, photos pending.", daysAgo: 1, draft: true,
	},
}

var seedLists = []struct {
	title       string
	description string
	picks       []string
	blurbs      []string
	featured    bool
	draft       bool
}{
	{
		title:       "Top 5 Cheap Eats",
		description: "Big flavor, small bill.",
		picks:       []string{"Un Bien", "Paseo", "Pho Bac Sup Shop", "Taurus Ox", "Il Corvo"},
		blurbs:      []string{"The sandwich to beat.", "A classic for a reason.", "Get the phorrito.", "Spicy and bright.", "Lunch only, worth planning for."},
		featured:    true,
	},
	{
		title:       "Date Night",
		description: "Places to dress up a little.",
		picks:       []string{"Canlis", "Taurus Ox"},
		blurbs:      []string{"Book a window table.", "Share everything."},
	},
	{
		title:       "Caribbean Sandwich Showdown",
		description: "Work in progress.",
		picks:       []string{"Un Bien", "Paseo"},
		draft:       true,
	},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	dsn := cfg.DatabasePath
	if cfg.DatabaseDriver == db.DriverPostgres {
		dsn = cfg.DatabaseURL
	}
	if err := db.Init(cfg.DatabaseDriver, dsn); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	fmt.Println("generating test data...")
	if err := clearContent(); err != nil {
		log.Fatalf("failed to clear content: %v", err)
	}
	reviews, err := createTestReviews(time.Now())
	if err != nil {
		log.Fatalf("failed to create reviews: %v", err)
	}
	fmt.Printf("created %d reviews\n", len(reviews))

	lists, err := createTestLists(reviews)
	if err != nil {
		log.Fatalf("failed to create lists: %v", err)
	}
	fmt.Printf("created %d lists\n", len(lists))
}

func clearContent() error {
	if err := db.DB.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&db.ListItem{}).Error; err != nil {
		return err
	}
	if err := db.DB.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&db.List{}).Error; err != nil {
		return err
	}
	return db.DB.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&db.Review{}).Error
}

// createTestReviews writes every seed review through the authoring workflow
// so the same validation and publish gate apply.
func createTestReviews(now time.Time) (map[string]db.Review, error) {
	reviews := service.NewReviewService(db.DB)
	created := make(map[string]db.Review, len(seedReviews))

	for _, seed := range seedReviews {
		editor := authoring.NewReviewEditor(reviews, nil)
		editor.SetRestaurantName(seed.name)
		editor.Edit(func(d *authoring.ReviewDraft) {
			d.Address = seed.address
			d.Lat = seed.lat
			d.Lng = seed.lng
			d.LocationTag = seed.location
			d.Rating = seed.rating
			d.PriceRange = seed.price
			d.Content = seed.content
			d.Excerpt = fmt.Sprintf("%s in %s.", seed.name, seed.location)
			d.PublishedAt = now.Add(-time.Duration(seed.daysAgo) * 24 * time.Hour)
			d.Author = "foodlog"
			d.IsFeatured = seed.featured
		})
		for _, cuisine := range seed.cuisines {
			if err := editor.AddTag(db.TagCuisines, cuisine); err != nil {
				return nil, err
			}
		}
		for _, vibe := range seed.vibes {
			if err := editor.AddTag(db.TagVibes, vibe); err != nil {
				return nil, err
			}
		}
		for _, dish := range seed.favorites {
			if err := editor.AddDish(authoring.FieldFavoriteDishes, dish); err != nil {
				return nil, err
			}
		}
		for _, dish := range seed.misses {
			if err := editor.AddDish(authoring.FieldLeastFavoriteDishes, dish); err != nil {
				return nil, err
			}
		}
		editor.AddImages(seed.images...)
		if len(seed.images) > 0 {
			if err := editor.CropCover(50, 40, 1.2); err != nil {
				return nil, err
			}
		}

		review, _, err := editor.Submit(seed.draft)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", seed.name, err)
		}
		created[seed.name] = *review
	}
	return created, nil
}

// createTestLists builds the seed lists through the list workflow.
func createTestLists(reviews map[string]db.Review) ([]db.List, error) {
	store := service.NewListService(db.DB)
	lists := make([]db.List, 0, len(seedLists))

	for _, seed := range seedLists {
		editor := authoring.NewListEditor(store)
		editor.SetTitle(seed.title)
		editor.SetDescription(seed.description)
		editor.SetFeatured(seed.featured)
		for i, name := range seed.picks {
			review, ok := reviews[name]
			if !ok {
				return nil, fmt.Errorf("list %q references unknown review %q", seed.title, name)
			}
			blurb := ""
			if i < len(seed.blurbs) {
				blurb = seed.blurbs[i]
			}
			if err := editor.AddReview(review, blurb); err != nil {
				return nil, err
			}
		}
		if cover, ok := reviews[seed.picks[0]]; ok {
			editor.SetCoverImage(cover.CoverImage)
		}

		list, _, err := editor.Save(!seed.draft)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", seed.title, err)
		}
		lists = append(lists, *list)
	}
	return lists, nil
}
