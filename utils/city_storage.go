package utils

import (
	"elk-bot/model"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/samber/lo"
)

// DefaultCities seeds a store whose file does not exist yet.
var DefaultCities = []model.City{
	{ID: "moonfallkeep", Level: 3, Name: "Moonfall Keep"},
	{ID: "watchold", Level: 5, Name: "Watchold"},
	{ID: "keepfestivia", Level: 7, Name: "Keep Festivia"},
	{ID: "momofort", Level: 5, Name: "Momofort"},
	{ID: "steadfastcitadel", Level: 5, Name: "Steadfast Citadel"},
}

// CityStore keeps the siege targets in memory and rewrites the whole JSON
// file on every mutation.
type CityStore struct {
	path   string
	mu     sync.RWMutex
	cities []model.City
}

// LoadCityStore reads path. If the file is missing it is created from seed.
func LoadCityStore(path string, seed []model.City) (*CityStore, error) {
	store := &CityStore{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read city file: %w", err)
		}
		store.cities = append([]model.City(nil), seed...)
		if err := store.saveInternal(); err != nil {
			return nil, err
		}
		return store, nil
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &store.cities); err != nil {
			return nil, fmt.Errorf("failed to unmarshal city file: %w", err)
		}
	}
	return store, nil
}

// saveInternal 内部保存函数，不加锁
func (s *CityStore) saveInternal() error {
	return s.write(s.cities)
}

func (s *CityStore) write(cities []model.City) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if cities == nil {
		cities = []model.City{}
	}
	data, err := json.MarshalIndent(cities, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal cities: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write city file: %w", err)
	}
	return nil
}

// Add stores city under the slug of its name. An existing record with the
// same id is replaced in place, otherwise the city is appended.
func (s *CityStore) Add(city model.City) (model.City, bool, error) {
	city.ID = model.Slugify(city.Name)
	if city.ID == "" {
		return city, false, fmt.Errorf("%w: city name is empty", model.ErrParse)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// 写入成功后才替换内存中的列表
	next := append(make([]model.City, 0, len(s.cities)+1), s.cities...)
	_, idx, found := lo.FindIndexOf(next, func(c model.City) bool { return c.ID == city.ID })
	if found {
		next[idx] = city
	} else {
		next = append(next, city)
	}
	if err := s.write(next); err != nil {
		return city, found, err
	}
	s.cities = next
	return city, found, nil
}

// Get looks a city up by id.
func (s *CityStore) Get(id string) (model.City, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Find(s.cities, func(c model.City) bool { return c.ID == id })
}

// All returns a copy of every city in stored order.
func (s *CityStore) All() []model.City {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.City(nil), s.cities...)
}

// Search returns the cities whose name contains query, case-insensitively.
func (s *CityStore) Search(query string) []model.City {
	query = strings.ToLower(query)
	return lo.Filter(s.All(), func(c model.City, _ int) bool {
		return strings.Contains(strings.ToLower(c.Name), query)
	})
}
