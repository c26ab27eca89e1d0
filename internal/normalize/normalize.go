// Package normalize converts raw source candidates into canonical
// NormalizedPlace records. One pure function per source tag; a
// candidate that cannot yield mandatory fields is dropped, not erred.
//
// No deduplication happens here: each source's candidates flow through
// independently. Volumes per query are small enough that duplicates
// across sources are tolerated downstream.
package normalize

import (
	"fmt"
	"strings"

	"github.com/placescout/placescout/internal/model"
	"github.com/placescout/placescout/internal/source"
	"github.com/placescout/placescout/pkg/googleplaces"
	"github.com/placescout/placescout/pkg/reddit"
)

// Candidate dispatches on the candidate's source tag. Returns false
// when the candidate cannot be normalized.
func Candidate(c source.Candidate) (*model.NormalizedPlace, bool) {
	switch c.Source {
	case model.SourceGoogleMaps:
		if c.GooglePlace == nil {
			return nil, false
		}
		return GooglePlace(c.GooglePlace)
	case model.SourceReddit:
		if c.RedditPost == nil {
			return nil, false
		}
		return RedditPost(c.RedditPost)
	default:
		return nil, false
	}
}

// priceLevels maps Places API price levels onto our ordered tiers.
var priceLevels = map[string]model.PriceTier{
	"PRICE_LEVEL_FREE":           model.PriceFree,
	"PRICE_LEVEL_INEXPENSIVE":    model.PriceCheap,
	"PRICE_LEVEL_MODERATE":       model.PriceModerate,
	"PRICE_LEVEL_EXPENSIVE":      model.PricePricey,
	"PRICE_LEVEL_VERY_EXPENSIVE": model.PriceLuxury,
}

// googleTypeCategories maps Places API types onto the bounded category
// vocabulary. Checked in order against primaryType then types.
var googleTypeCategories = []struct {
	prefix   string
	category string
}{
	{"restaurant", model.CategoryRestaurant},
	{"meal_", model.CategoryRestaurant},
	{"cafe", model.CategoryCafe},
	{"coffee_shop", model.CategoryCafe},
	{"bakery", model.CategoryCafe},
	{"bar", model.CategoryBar},
	{"night_club", model.CategoryBar},
	{"store", model.CategoryShop},
	{"shopping_mall", model.CategoryShop},
	{"market", model.CategoryShop},
	{"museum", model.CategoryEntertainment},
	{"movie_theater", model.CategoryEntertainment},
	{"art_gallery", model.CategoryEntertainment},
	{"park", model.CategoryOutdoor},
	{"hiking_area", model.CategoryOutdoor},
	{"beach", model.CategoryOutdoor},
	{"gym", model.CategoryFitness},
	{"fitness_center", model.CategoryFitness},
}

// GooglePlace normalizes a structured Places API result.
func GooglePlace(p *googleplaces.Place) (*model.NormalizedPlace, bool) {
	name := strings.TrimSpace(p.DisplayName.Text)
	if name == "" {
		return nil, false
	}

	place := &model.NormalizedPlace{
		ID:       "google_maps:" + p.ID,
		Name:     name,
		Category: googleCategory(p),
		Address:  p.FormattedAddress,
		Provenance: model.Provenance{
			Source:    model.SourceGoogleMaps,
			SourceURL: p.WebsiteURI,
		},
		Popularity: p.UserRatingCount,
	}

	if p.EditorialSummary != nil {
		place.Description = p.EditorialSummary.Text
	}
	if p.Rating > 0 && p.Rating <= 5 {
		r := p.Rating
		place.Rating = &r
	}
	if tier, ok := priceLevels[p.PriceLevel]; ok {
		place.Price = tier
	}
	if p.Location.Latitude != 0 || p.Location.Longitude != 0 {
		coords := model.Coordinates{Latitude: p.Location.Latitude, Longitude: p.Location.Longitude}
		if coords.Valid() {
			place.Coordinates = &coords
		}
	}

	if err := place.Validate(); err != nil {
		return nil, false
	}
	return place, true
}

func googleCategory(p *googleplaces.Place) string {
	types := make([]string, 0, len(p.Types)+1)
	if p.PrimaryType != "" {
		types = append(types, p.PrimaryType)
	}
	types = append(types, p.Types...)

	for _, t := range types {
		for _, m := range googleTypeCategories {
			if strings.HasPrefix(t, m.prefix) {
				return m.category
			}
		}
	}
	return model.CategoryLocalPlace
}

// RedditPost normalizes an unstructured discussion post. This path is
// best-effort by contract: the name heuristic is capitalization-based
// and lossy, and posts with no extractable place name are dropped.
func RedditPost(p *reddit.Post) (*model.NormalizedPlace, bool) {
	name := extractPlaceName(p.Title, p.SelfText)
	if name == "" {
		return nil, false
	}

	place := &model.NormalizedPlace{
		ID:       fmt.Sprintf("reddit:%s", p.ID),
		Name:     name,
		Category: categoryFromText(p.Title + " " + p.SelfText),
		Address:  extractAddress(p.SelfText),
		Tags:     extractTags(p.Title + " " + p.SelfText),
		Provenance: model.Provenance{
			Source:    model.SourceReddit,
			SourceURL: p.URL(),
		},
		Popularity: p.Score,
	}

	if desc := p.SelfText; desc != "" {
		if len(desc) > 500 {
			desc = desc[:500]
		}
		place.Description = desc
	}
	if rating, ok := extractRating(p.SelfText); ok {
		place.Rating = &rating
	}

	if err := place.Validate(); err != nil {
		return nil, false
	}
	return place, true
}
