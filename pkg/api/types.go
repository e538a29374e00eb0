package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// UserRequest — тело POST /api/users.
type UserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"` // plaintext, только тестовые данные
}

// CategoryRequest — тело POST /api/categories.
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ProductRequest — тело POST /api/products.
type ProductRequest struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	UserID      int64   `json:"userId"`
	CategoryIDs []int64 `json:"categoryIds"`
}

// Created — минимальная часть ответа на создание ресурса.
// ID == nil означает, что поле отсутствует или null.
type Created struct {
	ID *int64 `json:"id"`
}

// Page — конверт страницы. Общий для page и slice пагинации:
// у slice нет totalElements/totalPages, зато есть hasNext.
type Page struct {
	Content       []json.RawMessage `json:"content"`
	TotalElements int64             `json:"totalElements"`
	TotalPages    int               `json:"totalPages"`
	Size          int               `json:"size"`
	Number        int               `json:"number"`
	First         bool              `json:"first"`
	Last          bool              `json:"last"`
	HasNext       bool              `json:"hasNext"`

	// HasContent — был ли ключ content в ответе.
	HasContent bool `json:"-"`
}

// DecodePage разбирает конверт страницы.
func DecodePage(raw json.RawMessage) (*Page, error) {
	// Голый массив вместо конверта: ответ есть, но страницы нет
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode page: %w", err)
		}
		return &Page{}, nil
	}

	var page Page
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err == nil {
		_, page.HasContent = keys["content"]
	}
	return &page, nil
}

// CountCollection возвращает количество элементов коллекции.
//
// Сервис может вернуть либо голый массив, либо конверт страницы —
// тогда берётся totalElements (0, если поля нет).
func CountCollection(raw json.RawMessage) (int64, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return 0, fmt.Errorf("decode list: %w", err)
		}
		return int64(len(items)), nil
	}

	var envelope struct {
		TotalElements int64 `json:"totalElements"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return 0, fmt.Errorf("decode envelope: %w", err)
	}
	return envelope.TotalElements, nil
}

// Ограничения параметров пагинации (как на стороне сервиса).
const (
	MinPageSize = 1
	MaxPageSize = 100
)

// PageRequest — параметры пагинации: page, size и sort ("price,desc").
type PageRequest struct {
	Page int
	Size int
	Sort []string
}

// Validate проверяет параметры до отправки запроса.
func (r PageRequest) Validate() error {
	if r.Page < 0 {
		return fmt.Errorf("page must be >= 0, got %d", r.Page)
	}
	if r.Size < MinPageSize || r.Size > MaxPageSize {
		return fmt.Errorf("size must be between %d and %d, got %d", MinPageSize, MaxPageSize, r.Size)
	}
	for _, s := range r.Sort {
		parts := strings.Split(s, ",")
		if parts[0] == "" || len(parts) > 2 {
			return fmt.Errorf("invalid sort %q, expected \"property\" or \"property,direction\"", s)
		}
		if len(parts) == 2 {
			dir := strings.ToLower(parts[1])
			if dir != "asc" && dir != "desc" {
				return fmt.Errorf("invalid sort direction %q", parts[1])
			}
		}
	}
	return nil
}

// Values возвращает query параметры запроса.
func (r PageRequest) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(r.Page))
	v.Set("size", strconv.Itoa(r.Size))
	for _, s := range r.Sort {
		v.Add("sort", s)
	}
	return v
}

// PriceFilter — фильтр поиска по цене.
type PriceFilter struct {
	MinPrice float64
	MaxPrice float64
}

// Values возвращает query параметры фильтра.
func (f PriceFilter) Values() url.Values {
	v := url.Values{}
	v.Set("minPrice", strconv.FormatFloat(f.MinPrice, 'f', -1, 64))
	v.Set("maxPrice", strconv.FormatFloat(f.MaxPrice, 'f', -1, 64))
	return v
}
