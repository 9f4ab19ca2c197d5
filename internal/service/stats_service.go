package service

import (
	"math"
	"sort"

	"github.com/foodlog/internal/db"
	"gorm.io/gorm"
)

// StatsService aggregates public numbers about published content.
type StatsService struct {
	db *gorm.DB
}

// LabelCount is how many published reviews carry a label.
type LabelCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// SiteStats is the payload of the public stats page.
type SiteStats struct {
	ReviewCount     int          `json:"reviewCount"`
	ListCount       int          `json:"listCount"`
	AverageRating   float64      `json:"averageRating"`
	RatingHistogram []int        `json:"ratingHistogram"`
	PriceTiers      []LabelCount `json:"priceTiers"`
	Cuisines        []LabelCount `json:"cuisines"`
	Neighborhoods   []LabelCount `json:"neighborhoods"`
	TopRated        []db.Review  `json:"topRated"`
}

// NewStatsService creates a StatsService instance.
func NewStatsService(gdb *gorm.DB) *StatsService {
	return &StatsService{db: gdb}
}

// Compute loads published reviews and lists and summarizes them.
func (s *StatsService) Compute() (SiteStats, error) {
	var reviews []db.Review
	if err := s.db.Where("is_draft = ? AND content_type = ?", false, db.ContentTypeReview).
		Order("published_at desc").Order("id asc").
		Find(&reviews).Error; err != nil {
		return SiteStats{}, err
	}

	var listCount int64
	if err := s.db.Model(&db.List{}).Where("is_draft = ?", false).Count(&listCount).Error; err != nil {
		return SiteStats{}, err
	}

	stats := BuildStats(reviews)
	stats.ListCount = int(listCount)
	return stats, nil
}

// BuildStats summarizes already-filtered published reviews.
func BuildStats(reviews []db.Review) SiteStats {
	stats := SiteStats{
		ReviewCount:     len(reviews),
		RatingHistogram: make([]int, 11),
		PriceTiers:      []LabelCount{},
		Cuisines:        []LabelCount{},
		Neighborhoods:   []LabelCount{},
		TopRated:        []db.Review{},
	}
	if len(reviews) == 0 {
		return stats
	}

	var total float64
	cuisines := map[string]int{}
	neighborhoods := map[string]int{}
	tiers := make([]int, 5)
	for _, review := range reviews {
		total += review.Rating
		bucket := int(math.Floor(review.Rating))
		if bucket < 0 {
			bucket = 0
		}
		if bucket > 10 {
			bucket = 10
		}
		stats.RatingHistogram[bucket]++

		if review.PriceRange >= 1 && review.PriceRange <= 4 {
			tiers[review.PriceRange]++
		}
		for _, cuisine := range review.Tags.Cuisines {
			cuisines[cuisine]++
		}
		if review.LocationTag != "" {
			neighborhoods[review.LocationTag]++
		}
	}
	stats.AverageRating = math.Round(total/float64(len(reviews))*10) / 10

	for tier := 1; tier <= 4; tier++ {
		if tiers[tier] == 0 {
			continue
		}
		stats.PriceTiers = append(stats.PriceTiers, LabelCount{Name: "$$$$"[:tier], Count: tiers[tier]})
	}
	stats.Cuisines = sortedCounts(cuisines)
	stats.Neighborhoods = sortedCounts(neighborhoods)

	ranked := make([]db.Review, len(reviews))
	copy(ranked, reviews)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Rating != ranked[j].Rating {
			return ranked[i].Rating > ranked[j].Rating
		}
		return ranked[i].PublishedAt.After(ranked[j].PublishedAt)
	})
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}
	stats.TopRated = ranked
	return stats
}

func sortedCounts(counts map[string]int) []LabelCount {
	result := make([]LabelCount, 0, len(counts))
	for name, count := range counts {
		result = append(result, LabelCount{Name: name, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Name < result[j].Name
	})
	return result
}
