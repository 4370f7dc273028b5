package oss

import (
	"context"
	"io"
	"os"

	alioss "github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

// DocumentBucket holds the content of every workflow document. A
// DocumentRecord's fileReference is an object key in this bucket.
var (
	DocumentBucket *alioss.Bucket

	GetObjectFunc func(context.Context, string, ...alioss.Option) (io.ReadCloser, error)
	PutObjectFunc func(context.Context, string, io.Reader, ...alioss.Option) error
)

func Bootstrap() {
	var err error
	DocumentBucket, err = BuildBucketFromEnv()
	if err != nil {
		panic(err)
	}

	GetObjectFunc = GetObject
	PutObjectFunc = PutObject
}

func BuildBucketFromEnv() (*alioss.Bucket, error) {
	endpoint := os.ExpandEnv(os.Getenv("OSS_ENDPOINT"))
	if endpoint == "" {
		endpoint = "dummy"
	}
	accessKey := os.Getenv("OSS_ACCESS_KEY")
	secretKey := os.Getenv("OSS_SECRET_KEY")
	bucket := os.Getenv("OSS_BUCKET")
	if bucket == "" {
		bucket = "shipflow"
	}
	return BuildBucket(endpoint, accessKey, secretKey, bucket)
}

func BuildBucket(endpoint, accesskey, secretKey, bucketName string) (*alioss.Bucket, error) {
	// endpoint http://oss-cn-hangzhou.aliyuncs.com
	cli, err := alioss.New(endpoint, accesskey, secretKey, alioss.HTTPClient(nil))
	if err != nil {
		return nil, err
	}

	bucket, err := cli.Bucket(bucketName)
	if err != nil {
		return nil, err
	}
	return bucket, nil
}

func GetObject(ctx context.Context, key string, opts ...alioss.Option) (io.ReadCloser, error) {
	var childSpan *opentracing.Span
	if ctx != nil {
		parentSpan := opentracing.SpanFromContext(ctx)
		if parentSpan != nil {
			tracer := parentSpan.Tracer()
			sp := tracer.StartSpan("get-object", opentracing.ChildOf(parentSpan.Context()))
			sp.SetTag("object-key", key)
			childSpan = &sp
			defer sp.Finish()
		}
	}

	r, err := DocumentBucket.GetObject(key, opts...)
	if childSpan != nil {
		ext.Error.Set(*childSpan, err != nil)
	}
	return r, err
}

func PutObject(ctx context.Context, key string, r io.Reader, opts ...alioss.Option) error {
	var childSpan *opentracing.Span
	if ctx != nil {
		parentSpan := opentracing.SpanFromContext(ctx)
		if parentSpan != nil {
			tracer := parentSpan.Tracer()
			sp := tracer.StartSpan("put-object", opentracing.ChildOf(parentSpan.Context()))
			sp.SetTag("object-key", key)
			childSpan = &sp
			defer sp.Finish()
		}
	}

	err := DocumentBucket.PutObject(key, r, opts...)
	if childSpan != nil {
		ext.Error.Set(*childSpan, err != nil)
	}
	return err
}
