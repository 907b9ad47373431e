// Package keyspace отвечает за построение физических ключей хранилища.
//
// Каждый логический ключ дополняется префиксом владельца: стабильным uid
// авторизованного пользователя либо литералом "guest". Две разные учётные
// записи никогда не видят записей друг друга — это инвариант корректности,
// поэтому любая операция хранилища обязана строить ключи только через этот пакет.
package keyspace

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// GuestOwner — владелец по умолчанию, когда пользователь не авторизован.
const GuestOwner = "guest"

// Логические ключи служебных записей и флагов.
const (
	DoneControlTime        = "done-control-time"
	LastDailyProgressReset = "last_daily_progress_reset_date"
	SubscriptionType       = "subscription-type"
	ReviewShown            = "review-prompt-shown"
	CampaignLastDate       = "campaign-last-date"
	OfferLastShown         = "limited-time-offer-last-shown"
)

// Корни составных ключей карточек.
const (
	ActionRoot       = "card-action:"
	ActionDetailRoot = "card-action-detail:"
	ViewedRoot       = "prompt-viewed:"
	ExpiredRoot      = "prompt-expired:"
	ReportedRoot     = "prompt-deletion-reported:"
	NewContentRoot   = "new-content:"
)

// Owner нормализует идентификатор владельца: пустой uid означает гостя.
func Owner(uid string) string {
	if uid == "" {
		return GuestOwner
	}
	return uid
}

// Physical строит физический ключ хранилища из владельца и логического ключа.
func Physical(owner, logical string) string {
	return Owner(owner) + "_" + logical
}

// OwnerPrefix возвращает префикс, под которым лежат все записи владельца.
func OwnerPrefix(owner string) string {
	return Owner(owner) + "_"
}

// Logical отрезает префикс владельца от физического ключа.
// Второе значение false означает, что ключ принадлежит другому владельцу.
func Logical(owner, physical string) (string, bool) {
	return strings.CutPrefix(physical, OwnerPrefix(owner))
}

// DoneKey — логический ключ флага завершения подкатегории.
func DoneKey(category string, subCategoryIndex int) string {
	return fmt.Sprintf("%s.%d", category, subCategoryIndex)
}

// Флаги завершения имеют вид {category}.{int}. Ключ с совпадающей по форме
// концовкой, не являющийся флагом, будет ошибочно удалён суточным сбросом —
// известный риск исходной схемы ключей, закреплён тестами.
var doneKeyRe = regexp.MustCompile(`^.+\.\d+$`)

// IsDoneKey сообщает, выглядит ли логический ключ как флаг завершения подкатегории.
func IsDoneKey(logical string) bool {
	return doneKeyRe.MatchString(logical)
}

func cardKey(root, category, title string, cardIndex int) string {
	return fmt.Sprintf("%s%s:%s:%d", root, category, title, cardIndex)
}

// ActionKey — логический ключ компактной записи действия по карточке.
func ActionKey(category, title string, cardIndex int) string {
	return cardKey(ActionRoot, category, title, cardIndex)
}

// ActionPrefix — префикс компактных записей действий для пары (категория, title).
func ActionPrefix(category, title string) string {
	return ActionRoot + category + ":" + title + ":"
}

// ActionDetailKey — логический ключ подробной записи действия.
func ActionDetailKey(category, title string, cardIndex int) string {
	return cardKey(ActionDetailRoot, category, title, cardIndex)
}

// ActionDetailPrefix — префикс подробных записей для пары (категория, title).
func ActionDetailPrefix(category, title string) string {
	return ActionDetailRoot + category + ":" + title + ":"
}

// ViewedKey — логический ключ отметки первого просмотра подсказки.
func ViewedKey(category, title string, cardIndex int) string {
	return cardKey(ViewedRoot, category, title, cardIndex)
}

// ExpiredKey — логический ключ признака протухшей подсказки.
func ExpiredKey(category, title string, cardIndex int) string {
	return cardKey(ExpiredRoot, category, title, cardIndex)
}

// ReportedKey — логический ключ отметки, что удаление подсказки уже отправлено на бэкенд.
func ReportedKey(category, title string, cardIndex int) string {
	return cardKey(ReportedRoot, category, title, cardIndex)
}

// NewContentKey — логический ключ флага нового контента в категории.
func NewContentKey(category string) string {
	return NewContentRoot + category
}

// CategoriesKey — логический ключ списка категорий для типа контента.
func CategoriesKey(contentType string) string {
	return "content_type_categories_" + contentType
}

// ParseCardSuffix разбирает хвост составного ключа карточки
// ({category}:{title}:{index}) после отрезанного корня.
//
// Категория берётся до первого двоеточия, индекс после последнего,
// поэтому непрозрачный title с двоеточиями внутри разбирается без потерь.
func ParseCardSuffix(suffix string) (category, title string, cardIndex int, ok bool) {
	parts := strings.Split(suffix, ":")
	if len(parts) < 3 {
		return "", "", 0, false
	}
	idx, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil || idx < 0 {
		return "", "", 0, false
	}
	return parts[0], strings.Join(parts[1:len(parts)-1], ":"), idx, true
}
