// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"
)

const (
	DefaultPaginationCount = 100
	MaxPaginationCount     = 100
	PaginationOrderAsc     = "asc"
	PaginationOrderDesc    = "desc"
)

var ErrInvalidPaginationParameters = errors.New(
	"invalid pagination parameters",
)

// PaginationParams contains parsed pagination query values
type PaginationParams struct {
	Order string
	Count int
	Page  int
}

// ParsePagination reads count, page and order from the query string,
// applying defaults and clamping count and page into range
func ParsePagination(r *http.Request) (PaginationParams, error) {
	params := PaginationParams{
		Count: DefaultPaginationCount,
		Page:  1,
		Order: PaginationOrderAsc,
	}
	query := r.URL.Query()
	for name, dest := range map[string]*int{
		"count": &params.Count,
		"page":  &params.Page,
	} {
		val := query.Get(name)
		if val == "" {
			continue
		}
		tmp, err := strconv.Atoi(val)
		if err != nil {
			return PaginationParams{}, ErrInvalidPaginationParameters
		}
		*dest = tmp
	}
	if order := query.Get("order"); order != "" {
		order = strings.ToLower(order)
		if order != PaginationOrderAsc && order != PaginationOrderDesc {
			return PaginationParams{}, ErrInvalidPaginationParameters
		}
		params.Order = order
	}
	params.Count = min(max(params.Count, 1), MaxPaginationCount)
	params.Page = max(params.Page, 1)
	return params, nil
}

// paginate returns the requested page of items and sets the pagination
// headers
func paginate[T any](
	w http.ResponseWriter,
	items []T,
	params PaginationParams,
) []T {
	total := len(items)
	w.Header().Set("X-Pagination-Count-Total", strconv.Itoa(total))
	w.Header().Set(
		"X-Pagination-Page-Total",
		strconv.Itoa((total+params.Count-1)/params.Count),
	)
	if params.Order == PaginationOrderDesc {
		items = slices.Clone(items)
		slices.Reverse(items)
	}
	start := (params.Page - 1) * params.Count
	if start >= total {
		return []T{}
	}
	return items[start:min(start+params.Count, total)]
}
