// Package geo переводит координаты в целые числа с фиксированной точкой и обратно.
//
// Кодирование берет floor(x * 10^6): дробная часть после шестого знака отбрасывается вниз,
// поэтому для отрицательных координат результат уходит к минус бесконечности, а не к нулю.
// Decode(Encode(x)) не больше x и отличается от него меньше чем на 10^-6 по каждой оси.
// Эта потеря точности - часть формата хранимых записей, ее нельзя "исправлять" округлением.
package geo

import (
	"errors"
	"fmt"
	"math"
)

// Scale - множитель фиксированной точки (шесть знаков после запятой)
const Scale = 1_000_000

var ErrOutOfRange = errors.New("coordinates out of range")

// Validate проверяет диапазон широты и долготы
func Validate(latitude, longitude float64) error {
	if math.IsNaN(latitude) || math.IsInf(latitude, 0) || math.Abs(latitude) > 90 {
		return fmt.Errorf("%w: latitude %v", ErrOutOfRange, latitude)
	}
	if math.IsNaN(longitude) || math.IsInf(longitude, 0) || math.Abs(longitude) > 180 {
		return fmt.Errorf("%w: longitude %v", ErrOutOfRange, longitude)
	}
	return nil
}

// Encode переводит градусы в целые числа, округляя вниз
func Encode(latitude, longitude float64) (int64, int64, error) {
	if err := Validate(latitude, longitude); err != nil {
		return 0, 0, err
	}
	return encodeAxis(latitude), encodeAxis(longitude), nil
}

// Decode - точная обратная операция к делению на 10^6
func Decode(latInt, lngInt int64) (float64, float64) {
	return float64(latInt) / Scale, float64(lngInt) / Scale
}

func encodeAxis(value float64) int64 {
	return int64(math.Floor(value * Scale))
}
