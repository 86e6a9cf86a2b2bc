package batch

import (
	"encoding/json"
	"fmt"

	models "github.com/RoGogDBD/telemetry-sdk/internal/model"
)

// identity — ключ дедупликации метрики: тип, имя и набор тегов.
//
// Теги приводятся к каноничной строке, поэтому порядок их добавления
// не влияет на равенство ключей.
type identity struct {
	kind  models.MetricType
	name  string
	attrs string
}

func newIdentity(kind models.MetricType, name string, tags models.Attributes) identity {
	return identity{kind: kind, name: name, attrs: attributesKey(tags)}
}

// attributesKey возвращает каноничное представление тегов.
//
// encoding/json сортирует ключи map, так что одинаковые наборы дают одинаковую строку.
// nil и пустой набор дают пустую строку.
func attributesKey(tags models.Attributes) string {
	if len(tags) == 0 {
		return ""
	}
	data, err := json.Marshal(tags)
	if err != nil {
		// Значения, которые не сериализуются в JSON, всё равно должны давать
		// стабильный ключ: fmt тоже печатает map в порядке ключей.
		return fmt.Sprintf("%#v", map[string]any(tags))
	}
	return string(data)
}
