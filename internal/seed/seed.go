// Package seed заполняет пустой реестр спасателей из YAML-файла.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/shenikar/emergency_dispatch_system/internal/service"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// File - содержимое файла начальных данных
type File struct {
	Responders []ResponderEntry `yaml:"responders"`
}

// ResponderEntry - спасатель в файле начальных данных. Координаты необязательны.
// Доступность не задается: реестр регистрирует всех свободными.
type ResponderEntry struct {
	Name string   `yaml:"name"`
	Role string   `yaml:"role"`
	Lat  *float64 `yaml:"lat"`
	Lng  *float64 `yaml:"lng"`
}

// Parse читает YAML из r
func Parse(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode seed file: %w", err)
	}
	return &f, nil
}

// LoadFile читает файл начальных данных с диска
func LoadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer fh.Close()
	return Parse(fh)
}

// Responders регистрирует спасателей из f, если хранилище пусто.
// Возвращает число зарегистрированных.
func Responders(ctx context.Context, f *File, repo service.ResponderRepository, registry service.ResponderService, logger *logrus.Logger) (int, error) {
	log := logger.WithField("component", "seed")

	count, err := repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed: could not count responders: %w", err)
	}
	if count > 0 {
		log.WithField("existing", count).Info("Responder registry is not empty, skipping seed")
		return 0, nil
	}

	for i, entry := range f.Responders {
		responder := entry.toModel()
		if err := registry.RegisterResponder(ctx, responder); err != nil {
			return i, fmt.Errorf("seed: responder #%d (%s): %w", i+1, entry.Name, err)
		}
	}
	log.WithField("count", len(f.Responders)).Info("Responders seeded")
	return len(f.Responders), nil
}

func (e ResponderEntry) toModel() *models.Responder {
	responder := &models.Responder{
		Name:         e.Name,
		Role:         models.Role(e.Role),
		Availability: true,
	}
	if e.Lat != nil && e.Lng != nil {
		responder.Location = &models.Location{Latitude: *e.Lat, Longitude: *e.Lng}
	}
	return responder
}
