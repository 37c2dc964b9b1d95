// Package eta оценивает время прибытия спасателя к месту происшествия.
package eta

import (
	"errors"
	"math"

	"github.com/shenikar/emergency_dispatch_system/internal/models"
)

const (
	earthRadiusKm = 6371.0

	// DefaultSpeedKmH - средняя скорость выезда, если не задана в конфигурации
	DefaultSpeedKmH = 40.0
)

// ErrLocationUnavailable возвращается, если координаты спасателя еще неизвестны
var ErrLocationUnavailable = errors.New("responder location unavailable")

// Calculator - чистая функция оценки ETA при фиксированной скорости
type Calculator struct {
	speedKmH float64
}

// NewCalculator создает калькулятор; неположительная скорость заменяется значением по умолчанию
func NewCalculator(speedKmH float64) *Calculator {
	if speedKmH <= 0 {
		speedKmH = DefaultSpeedKmH
	}
	return &Calculator{speedKmH: speedKmH}
}

// Estimate возвращает ETA в минутах: расстояние по большому кругу / скорость,
// округление вверх до целой минуты, но не меньше 1.
func (c *Calculator) Estimate(from *models.Location, to models.Location) (int, error) {
	if from == nil {
		return 0, ErrLocationUnavailable
	}
	minutes := math.Ceil(DistanceKm(*from, to) / c.speedKmH * 60)
	if minutes < 1 {
		return 1, nil
	}
	return int(minutes), nil
}

// DistanceKm - расстояние по формуле гаверсинусов
func DistanceKm(a, b models.Location) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}
