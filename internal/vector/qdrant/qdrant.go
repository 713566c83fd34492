// Package qdrant implements vector.Store against a Qdrant instance over gRPC.
package qdrant

import (
	"context"
	"fmt"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/semnotes/semnotes/internal/vector"
)

// Store is a Qdrant-backed vector.Store.
type Store struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
}

// New connects to Qdrant at host:port and operates on the named collection.
func New(host string, port int, collection string) (*Store, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant connect: %w", err)
	}
	return &Store{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
	}, nil
}

func (s *Store) EnsureCollection(ctx context.Context, dim int) error {
	resp, err := s.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("qdrant list collections: %w", err)
	}
	for _, c := range resp.GetCollections() {
		if c.GetName() == s.collection {
			return nil
		}
	}

	_, err = s.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(dim),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("qdrant create collection %s: %w", s.collection, err)
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, points []vector.Point) error {
	pts := make([]*pb.PointStruct, len(points))
	for i, p := range points {
		pts[i] = &pb.PointStruct{
			Id:      &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: p.ID}},
			Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: p.Vector}}},
			Payload: payloadValues(p.Payload),
		}
	}

	wait := true
	_, err := s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points:         pts,
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert: %w", err)
	}
	return nil
}

func (s *Store) Search(ctx context.Context, vec []float32, limit int) ([]vector.Hit, error) {
	resp, err := s.points.Search(ctx, &pb.SearchPoints{
		CollectionName: s.collection,
		Vector:         vec,
		Limit:          uint64(limit),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant search: %w", err)
	}

	hits := make([]vector.Hit, len(resp.GetResult()))
	for i, pt := range resp.GetResult() {
		hits[i] = vector.Hit{
			ID:      pt.GetId().GetUuid(),
			Score:   pt.GetScore(),
			Payload: payloadFromValues(pt.GetPayload()),
		}
	}
	return hits, nil
}

func (s *Store) CollectionInfo(ctx context.Context) (*vector.CollectionInfo, error) {
	resp, err := s.collections.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: s.collection,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant collection info: %w", err)
	}

	result := resp.GetResult()
	info := &vector.CollectionInfo{
		Name:        s.collection,
		Status:      result.GetStatus().String(),
		PointsCount: result.GetPointsCount(),
	}
	if params := result.GetConfig().GetParams().GetVectorsConfig().GetParams(); params != nil {
		info.VectorSize = params.GetSize()
		info.Distance = params.GetDistance().String()
	}
	return info, nil
}

func (s *Store) DeleteCollection(ctx context.Context) error {
	_, err := s.collections.Delete(ctx, &pb.DeleteCollection{
		CollectionName: s.collection,
	})
	if err != nil {
		return fmt.Errorf("qdrant delete collection %s: %w", s.collection, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

func payloadValues(p vector.Payload) map[string]*pb.Value {
	return map[string]*pb.Value{
		"filepath":     {Kind: &pb.Value_StringValue{StringValue: p.Filepath}},
		"filename":     {Kind: &pb.Value_StringValue{StringValue: p.Filename}},
		"chunk_index":  {Kind: &pb.Value_IntegerValue{IntegerValue: int64(p.ChunkIndex)}},
		"total_chunks": {Kind: &pb.Value_IntegerValue{IntegerValue: int64(p.TotalChunks)}},
		"word_count":   {Kind: &pb.Value_IntegerValue{IntegerValue: int64(p.WordCount)}},
		"file_type":    {Kind: &pb.Value_StringValue{StringValue: p.FileType}},
	}
}

func payloadFromValues(values map[string]*pb.Value) vector.Payload {
	return vector.Payload{
		Filepath:    values["filepath"].GetStringValue(),
		Filename:    values["filename"].GetStringValue(),
		ChunkIndex:  int(values["chunk_index"].GetIntegerValue()),
		TotalChunks: int(values["total_chunks"].GetIntegerValue()),
		WordCount:   int(values["word_count"].GetIntegerValue()),
		FileType:    values["file_type"].GetStringValue(),
	}
}

var _ vector.Store = (*Store)(nil)
