package search

import (
	"context"
	"encoding/json"
	"fmt"
	"shipflow/account"
	"shipflow/bizerror"
	"shipflow/client/es"
	"shipflow/domain"
	"shipflow/indices"
	"shipflow/session"
	"strings"
)

var (
	SearchRequestsFunc = SearchRequests
)

// RequestSearchQuery carries the filters of a full-text request search.
type RequestSearchQuery struct {
	Title    string                 `form:"title"`
	Category domain.RequestCategory `form:"category"`
	Priority domain.Priority        `form:"priority"`
	StageIds []int                  `form:"stageId"`

	// "", "true" or "false"
	Completed string `form:"completed"`
}

func SearchRequests(q RequestSearchQuery, sec *session.Context) ([]domain.RequestDetail, error) {
	if sec == nil {
		return nil, bizerror.ErrUnauthenticated
	}
	if !sec.Perms.HasRole(account.WorkflowOperatePermission) && !sec.Perms.HasRole(account.SystemAdminPermission) {
		return nil, bizerror.ErrForbidden
	}

	/*
		{
			"query": {
				"bool": {
					"filter": [
						{"match": {"title": {"query": "xxx", "operator": "AND"}}},
						{"term": {"category": "import"}},
						{"term": {"priority": "high"}},
						{"terms": {"currentStageId": [1, 2]}},
						{"term": {"completed": true}}
					]
				}
			},
			"size": 10000,
			"sort": [
				{"createTime": {"order": "desc"}}
			]
		}
	*/
	filters := make([]es.H, 0, 5)
	if q.Title != "" {
		filters = append(filters, es.H{"match": es.H{"title": es.H{"query": q.Title, "operator": "AND"}}})
	}
	if q.Category != "" {
		filters = append(filters, es.H{"term": es.H{"category": q.Category}})
	}
	if q.Priority != "" {
		filters = append(filters, es.H{"term": es.H{"priority": q.Priority}})
	}
	if len(q.StageIds) > 0 {
		filters = append(filters, es.H{"terms": es.H{"currentStageId": q.StageIds}})
	}
	if q.Completed == "true" {
		filters = append(filters, es.H{"term": es.H{"completed": true}})
	} else if q.Completed == "false" {
		filters = append(filters, es.H{"term": es.H{"completed": false}})
	}

	sorts := make([]es.H, 0, 1)
	sorts = append(sorts, es.H{"createTime": es.H{"order": "desc"}})

	root := es.H{"bool": es.H{"filter": filters}}
	r, err := es.SearchFunc(context.Background(), indices.RequestIndexName, es.H{"size": 10000, "query": root, "sort": sorts})
	if err != nil {
		return nil, err
	}

	details := make([]domain.RequestDetail, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		d := domain.RequestDetail{}
		if err := json.NewDecoder(strings.NewReader(string(hit.Source))).Decode(&d); err != nil {
			return nil, fmt.Errorf(string(hit.Source))
		}
		details = append(details, d)
	}

	return details, nil
}
