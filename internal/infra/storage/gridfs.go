package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"lumiere/internal/usecase"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// 商品画像のバケット名
const ImageBucket = "jewelry-images"

// Connect は MongoDB に接続して疎通確認まで行う
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	client, err := mongo.Connect(options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI))
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// GridFSStorage は画像を GridFS に保存する
type GridFSStorage struct {
	bucket *mongo.GridFSBucket
}

func NewGridFSStorage(db *mongo.Database) *GridFSStorage {
	return &GridFSStorage{
		bucket: db.GridFSBucket(options.GridFSBucket().SetName(ImageBucket)),
	}
}

func (s *GridFSStorage) Put(ctx context.Context, name string, contentType string, r io.Reader) error {
	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: "contentType", Value: contentType}})
	if _, err := s.bucket.UploadFromStream(ctx, name, r, opts); err != nil {
		return fmt.Errorf("gridfs upload %s: %w", name, err)
	}
	return nil
}

func (s *GridFSStorage) Open(ctx context.Context, name string) (usecase.Object, error) {
	stream, err := s.bucket.OpenDownloadStreamByName(ctx, name)
	if errors.Is(err, mongo.ErrFileNotFound) {
		return usecase.Object{}, usecase.ErrObjectNotFound
	}
	if err != nil {
		return usecase.Object{}, fmt.Errorf("gridfs open %s: %w", name, err)
	}

	file := stream.GetFile()
	contentType := "application/octet-stream"
	if file.Metadata != nil {
		if v, ok := file.Metadata.Lookup("contentType").StringValueOK(); ok && v != "" {
			contentType = v
		}
	}

	return usecase.Object{
		ReadCloser:  stream,
		ContentType: contentType,
		Size:        file.Length,
	}, nil
}

// Delete は同名のファイルを全部消す
func (s *GridFSStorage) Delete(ctx context.Context, name string) error {
	cur, err := s.bucket.Find(ctx, bson.D{{Key: "filename", Value: name}})
	if err != nil {
		return fmt.Errorf("gridfs find %s: %w", name, err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var f struct {
			ID bson.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&f); err != nil {
			return err
		}
		if err := s.bucket.Delete(ctx, f.ID); err != nil && !errors.Is(err, mongo.ErrFileNotFound) {
			return fmt.Errorf("gridfs delete %s: %w", name, err)
		}
	}
	return cur.Err()
}
