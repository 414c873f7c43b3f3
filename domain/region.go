package domain

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Region is a service area an agent works in.
type Region struct {
	ID   int    `json:"id"`
	UUID string `json:"uuid"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// DefaultRegionID is assigned when an agent has not picked a region.
const DefaultRegionID = 1

var regionNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://realty.io/regions"))

func newRegion(id int, slug, name string) Region {
	return Region{
		ID:   id,
		UUID: uuid.NewSHA1(regionNamespace, []byte(slug)).String(),
		Slug: slug,
		Name: name,
	}
}

var regions = []Region{
	newRegion(1, "moscow", "Москва и МО"),
	newRegion(2, "saint-petersburg", "Санкт-Петербург и ЛО"),
	newRegion(3, "kazan", "Казань"),
	newRegion(4, "yekaterinburg", "Екатеринбург"),
	newRegion(5, "novosibirsk", "Новосибирск"),
	newRegion(6, "krasnodar", "Краснодар"),
	newRegion(7, "sochi", "Сочи"),
}

// Regions returns the catalog in id order.
func Regions() []Region {
	return append([]Region(nil), regions...)
}

// LookupRegion finds a region by uuid, numeric id, slug or display name.
func LookupRegion(key string) (Region, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Region{}, false
	}
	if id, err := strconv.Atoi(key); err == nil {
		for _, r := range regions {
			if r.ID == id {
				return r, true
			}
		}
		return Region{}, false
	}
	for _, r := range regions {
		if strings.EqualFold(r.UUID, key) || strings.EqualFold(r.Slug, key) || strings.EqualFold(r.Name, key) {
			return r, true
		}
	}
	return Region{}, false
}
