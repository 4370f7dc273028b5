package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"os"
	"shipflow/domain"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
	"github.com/elastic/go-elasticsearch/v7/estransport"
	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

var (
	SearchFunc             = Search
	IndexFunc              = Index
	GetDocumentFunc        = GetDocument
	DropIndexFunc          = DropIndex
	DeleteDocumentByIdFunc = DeleteDocumentById
)

type H map[string]interface{}

type ESGetResult struct {
	Index string `json:"_index"`
	Type  string `json:"_type"`
	Id    string `json:"_id"`

	Version     int `json:"_version"`
	SeqNO       int `json:"_seq_no"`
	PrimaryTerm int `json:"_primary_term"`

	Found  bool   `json:"found"`
	Source Source `json:"_source"`
}

const (
	DeleteResultDeleted  = "deleted"
	DeleteResultNotFound = "not_found"
)

type ESDeleteResult struct {
	Index string `json:"_index"`
	Type  string `json:"_type"`
	Id    string `json:"_id"`

	Version     int `json:"_version"`
	SeqNO       int `json:"_seq_no"`
	PrimaryTerm int `json:"_primary_term"`

	Result string         `json:"result"` // deleted, not_found
	Shards ESSearchShards `json:"_shards"`
}

type ESSearchResult struct {
	Took    int            `json:"took"`
	TimeOut bool           `json:"timed_out"`
	Shards  ESSearchShards `json:"_shards"`
	Hits    ESSearchHits   `json:"hits"`
}
type ESSearchShards struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}
type ESSearchHits struct {
	Total    ESSearchHitsTotal `json:"total"`
	MaxScore float64           `json:"max_score"`
	Hits     []ESSearchHit     `json:"hits"`
}
type ESSearchHitsTotal struct {
	Value    int    `json:"value"`
	Relation string `json:"relation"`
}
type ESSearchHit struct {
	Index string `json:"_index"`
	Type  string `json:"_type"`
	Id    string `json:"_id"`

	Score  float64 `json:"_score"`
	Source Source  `json:"_source"`
}

// Source keeps the raw _source JSON so callers decode into their own type.
type Source string

func (d *Source) UnmarshalJSON(data []byte) (err error) {
	*d = Source(data)
	return
}

func (d *Source) MarshalJSON() ([]byte, error) {
	return []byte(*d), nil
}

var ActiveESClient *elasticsearch.Client

// CreateClientFromEnv builds the shared client. The address is taken from
// ELASTICSEARCH_URL by the driver itself.
func CreateClientFromEnv() *elasticsearch.Client {
	debug := os.Getenv("GIN_MODE") == "debug"
	conf := elasticsearch.Config{
		Logger:    &estransport.TextLogger{Output: os.Stdout, EnableRequestBody: debug, EnableResponseBody: debug},
		Transport: &TracingTransport{Transport: http.DefaultTransport},
	}
	client, err := elasticsearch.NewClient(conf)
	if err != nil {
		panic(err)
	}

	ActiveESClient = client
	return client
}

func encodeBody(doc interface{}) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, err
	}
	return &buf, nil
}

// drainResponse closes the response body and surfaces an elasticsearch
// level error as a Go error.
func drainResponse(res *esapi.Response, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, fmt.Errorf("error response status %s: %s", res.Status(), string(body))
	}
	return body, nil
}

func Index(ctx context.Context, index string, id types.ID, doc interface{}) error {
	buf, err := encodeBody(doc)
	if err != nil {
		return err
	}
	logrus.Debugf("index %s document %s: %s", index, id, buf.String())

	req := esapi.IndexRequest{
		Index:      index,
		DocumentID: id.String(),
		Body:       bytes.NewReader(buf.Bytes()),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, ActiveESClient)
	_, err = drainResponse(res, err)
	return err
}

func DropIndex(ctx context.Context, index string) error {
	req := esapi.IndicesDeleteRequest{
		Index: []string{index},
	}
	res, err := req.Do(ctx, ActiveESClient)
	_, err = drainResponse(res, err)
	return err
}

func Search(ctx context.Context, index string, query interface{}) (*ESSearchResult, error) {
	q, err := encodeBody(query)
	if err != nil {
		return nil, err
	}

	res, err := ActiveESClient.Search(
		ActiveESClient.Search.WithContext(ctx),
		ActiveESClient.Search.WithIndex(index),
		ActiveESClient.Search.WithBody(q),
		ActiveESClient.Search.WithTrackTotalHits(true),
	)
	body, err := drainResponse(res, err)
	if err != nil {
		return nil, err
	}

	result := ESSearchResult{}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("malformed search response: %s", string(body))
	}
	return &result, nil
}

func GetDocument(ctx context.Context, index string, id types.ID) (Source, error) {
	res, err := ActiveESClient.Get(index, id.String(), ActiveESClient.Get.WithContext(ctx))
	if err == nil && res.StatusCode == http.StatusNotFound {
		res.Body.Close()
		return "", domain.ErrNotFound
	}
	body, err := drainResponse(res, err)
	if err != nil {
		return "", err
	}

	result := ESGetResult{}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	if !result.Found {
		return "", domain.ErrNotFound
	}
	return result.Source, nil
}

func DeleteDocumentById(ctx context.Context, index string, id types.ID) error {
	res, err := ActiveESClient.Delete(index, id.String(),
		ActiveESClient.Delete.WithRefresh("true"),
		ActiveESClient.Delete.WithContext(ctx))
	body, err := drainResponse(res, err)
	if err != nil {
		return err
	}

	result := ESDeleteResult{}
	if err := json.Unmarshal(body, &result); err != nil {
		return err
	}
	if result.Result == DeleteResultDeleted || result.Result == DeleteResultNotFound {
		return nil
	}
	return fmt.Errorf("delete error on elasticsearch: %v", string(body))
}
