// Package models содержит доменные структуры трекера прогресса:
// действия пользователя по карточкам, адрес карточки и типы подписки,
// а также вспомогательные Dummy-типы для приёма данных из JSON-запросов.
package models

// Action представляет решение пользователя по одной карточке контента.
type Action string

// Допустимые действия по карточке.
const (
	ActionLike    Action = "like"
	ActionDislike Action = "dislike"
	ActionMaybe   Action = "maybe"
)

// Valid сообщает, является ли значение одним из допустимых действий.
func (a Action) Valid() bool {
	switch a {
	case ActionLike, ActionDislike, ActionMaybe:
		return true
	}
	return false
}

// Типы подписки пользователя, хранятся свободным текстом.
const (
	SubscriptionWeekly = "weekly"
	SubscriptionAnnual = "annual"
	SubscriptionTrial  = "trial"
)

// CardRef адресует одну карточку контента.
// Title — непрозрачный идентификатор элемента контента, не обязательно
// человекочитаемый текст; CardIndex — позиция карточки с нуля внутри набора.
type CardRef struct {
	Category  string `json:"category"`
	Title     string `json:"title"`
	CardIndex int    `json:"card_index"`
}

// ActionDetail — подробная запись действия по карточке.
// Timestamp хранится в миллисекундах эпохи; Synced выставляется в true
// только после подтверждённой отправки записи на бэкенд.
type ActionDetail struct {
	Category  string `json:"category"`
	Title     string `json:"title"`
	CardIndex int    `json:"cardIndex"`
	Action    Action `json:"action"`
	Timestamp int64  `json:"timestamp"`
	Synced    bool   `json:"synced"`
}

// DummyDone используется для приёма отметки о завершении подкатегории.
// Индекс приходит указателем, чтобы нулевой индекс проходил валидацию required.
type DummyDone struct {
	Category         string `json:"category" validate:"required"`
	SubCategoryIndex *int   `json:"sub_category_index" validate:"required,min=0"`
}

// DummyCardAction используется для приёма действия по карточке из JSON-запроса.
type DummyCardAction struct {
	Category  string `json:"category" validate:"required"`
	Title     string `json:"title" validate:"required"`
	CardIndex *int   `json:"card_index" validate:"required,min=0"`
	Action    string `json:"action" validate:"required,oneof=like dislike maybe"`
}

// DummyCardRef используется для приёма адреса карточки без действия.
type DummyCardRef struct {
	Category  string `json:"category" validate:"required"`
	Title     string `json:"title" validate:"required"`
	CardIndex *int   `json:"card_index" validate:"required,min=0"`
}

// DummyResetDaily — карта категорий для суточного сброса:
// имя категории и количество её подкатегорий.
type DummyResetDaily struct {
	Categories map[string]int `json:"categories" validate:"required"`
}

// DummyResetAll — параметры полного сброса прогресса по подкатегориям.
// Force обходит суточную защёлку по дате для явного запуска из приложения.
type DummyResetAll struct {
	Force bool `json:"force"`
}

// DummyFlag используется для приёма значения произвольного флага.
type DummyFlag struct {
	Value string `json:"value" validate:"required"`
}

// DummyCategories используется для приёма списка категорий типа контента.
type DummyCategories struct {
	Categories []string `json:"categories"`
}
