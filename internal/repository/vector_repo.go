package repository

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

const defaultVectorDimension = 768

// VectorConnectionConfig holds configuration for the Qdrant connection.
type VectorConnectionConfig struct {
	Host            string
	Port            int
	Collection      string
	APIKey          string // Qdrant Cloud API Key (enables TLS automatically)
	UseTLS          bool   // Explicitly enable TLS without API Key
	VectorDimension int
}

// apiKeyInterceptor creates a unary interceptor that adds the API key to metadata
func apiKeyInterceptor(apiKey string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = metadata.AppendToOutgoingContext(ctx, "api-key", apiKey)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// VectorRepository maintains the style-embedding index in Qdrant. The
// relational style_profiles row is the source of truth; this index only
// serves similarity lookups, so callers may treat failures here as
// non-fatal.
type VectorRepository struct {
	conn            *grpc.ClientConn
	pointsClient    pb.PointsClient
	collectClient   pb.CollectionsClient
	collectionName  string
	vectorDimension int
}

// NewVectorRepository creates a new VectorRepository.
// Supports both local Qdrant (insecure) and Qdrant Cloud (TLS + API Key).
func NewVectorRepository(cfg *VectorConnectionConfig) (*VectorRepository, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	vectorDimension := cfg.VectorDimension
	if vectorDimension <= 0 {
		vectorDimension = defaultVectorDimension
	}

	var opts []grpc.DialOption
	useTLS := cfg.UseTLS || cfg.APIKey != ""
	if useTLS {
		tlsConfig := &tls.Config{
			MinVersion: tls.VersionTLS13,
		}
		opts = append(opts, grpc.WithTransportCredentials(credentials.NewTLS(tlsConfig)))
		if cfg.APIKey != "" {
			opts = append(opts, grpc.WithUnaryInterceptor(apiKeyInterceptor(cfg.APIKey)))
		}
	} else {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant: %w", err)
	}

	return &VectorRepository{
		conn:            conn,
		pointsClient:    pb.NewPointsClient(conn),
		collectClient:   pb.NewCollectionsClient(conn),
		collectionName:  cfg.Collection,
		vectorDimension: vectorDimension,
	}, nil
}

// Close closes the gRPC connection.
func (r *VectorRepository) Close() error {
	return r.conn.Close()
}

// EnsureCollection creates the collection if it doesn't exist and verifies
// the vector size if it does.
func (r *VectorRepository) EnsureCollection(ctx context.Context) error {
	info, err := r.collectClient.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: r.collectionName,
	})
	if err == nil {
		if size, ok := collectionVectorSize(info.GetResult()); ok {
			if size != uint64(r.vectorDimension) {
				return fmt.Errorf("collection %s has vector size %d, expected %d", r.collectionName, size, r.vectorDimension)
			}
		}
		return nil
	}

	_, err = r.collectClient.Create(ctx, &pb.CreateCollection{
		CollectionName: r.collectionName,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(r.vectorDimension),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

func collectionVectorSize(info *pb.CollectionInfo) (uint64, bool) {
	if info == nil {
		return 0, false
	}
	config := info.GetConfig()
	if config == nil {
		return 0, false
	}
	params := config.GetParams()
	if params == nil {
		return 0, false
	}
	vectors := params.GetVectorsConfig()
	if vectors == nil {
		return 0, false
	}
	if single := vectors.GetParams(); single != nil {
		if size := single.GetSize(); size > 0 {
			return size, true
		}
	}
	return 0, false
}

// StylePayload is the payload stored alongside each style vector.
type StylePayload struct {
	UserID string
	Tone   string
	Pacing string
	Themes []string
}

// PointIDForUser derives a stable point UUID from the user ID so that
// retraining overwrites the same point instead of adding a second one.
func PointIDForUser(userID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("style:"+userID)).String()
}

// UpsertStyleVector inserts or replaces the style embedding for a user.
func (r *VectorRepository) UpsertStyleVector(ctx context.Context, userID string, vector []float32, payload *StylePayload) error {
	points := []*pb.PointStruct{
		{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{
					Uuid: PointIDForUser(userID),
				},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{
						Data: vector,
					},
				},
			},
			Payload: map[string]*pb.Value{
				"user_id": {Kind: &pb.Value_StringValue{StringValue: payload.UserID}},
				"tone":    {Kind: &pb.Value_StringValue{StringValue: payload.Tone}},
				"pacing":  {Kind: &pb.Value_StringValue{StringValue: payload.Pacing}},
				"themes":  themesToValue(payload.Themes),
			},
		},
	}

	_, err := r.pointsClient.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: r.collectionName,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert style vector: %w", err)
	}
	return nil
}

func themesToValue(themes []string) *pb.Value {
	values := make([]*pb.Value, len(themes))
	for i, theme := range themes {
		values[i] = &pb.Value{Kind: &pb.Value_StringValue{StringValue: theme}}
	}
	return &pb.Value{
		Kind: &pb.Value_ListValue{
			ListValue: &pb.ListValue{Values: values},
		},
	}
}

// SimilarProfile is one similarity search hit.
type SimilarProfile struct {
	UserID string
	Score  float32
}

// SearchSimilar returns the creators whose style embeddings are closest to
// the given vector, excluding the querying user.
func (r *VectorRepository) SearchSimilar(ctx context.Context, userID string, vector []float32, topK int) ([]SimilarProfile, error) {
	resp, err := r.pointsClient.Search(ctx, &pb.SearchPoints{
		CollectionName: r.collectionName,
		Vector:         vector,
		Limit:          uint64(topK + 1),
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search style vectors: %w", err)
	}

	results := make([]SimilarProfile, 0, len(resp.Result))
	for _, scored := range resp.Result {
		hit := SimilarProfile{Score: scored.Score}
		if v, ok := scored.Payload["user_id"]; ok {
			hit.UserID = v.GetStringValue()
		}
		if hit.UserID == userID {
			continue
		}
		results = append(results, hit)
		if len(results) == topK {
			break
		}
	}
	return results, nil
}
