package service

import (
	"context"
	"testing"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gogotex/nodedoc/internal/document/repository"
	"github.com/gogotex/nodedoc/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestCreateGetDelete(t *testing.T) {
	svc := NewMemoryService()
	ctx := context.Background()

	d, err := svc.Create(ctx, "")
	require.NoError(t, err)
	require.NotEmpty(t, d.ID)

	_, err = svc.Create(ctx, d.ID)
	require.ErrorIs(t, err, ErrExists)

	got, err := svc.Get(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.Len())

	ids, err := svc.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{d.ID}, ids)

	require.NoError(t, svc.Delete(ctx, d.ID))
	require.ErrorIs(t, svc.Delete(ctx, d.ID), ErrNotFound)
	_, err = svc.Get(ctx, d.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSetNodeCreatesThenUpdates(t *testing.T) {
	svc := NewMemoryService()
	ctx := context.Background()
	_, err := svc.Create(ctx, "doc")
	require.NoError(t, err)

	before := testutil.ToFloat64(metrics.NodeMutations.WithLabelValues("add"))
	created, err := svc.SetNode(ctx, "doc", "Feature", true)
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, before+1, testutil.ToFloat64(metrics.NodeMutations.WithLabelValues("add")))

	created, err = svc.SetNode(ctx, "doc", "FEATURE", false)
	require.NoError(t, err)
	require.False(t, created)

	d, err := svc.Get(ctx, "doc")
	require.NoError(t, err)
	n, ok := d.Node("feature")
	require.True(t, ok)
	require.False(t, n.Flag())
	require.Equal(t, 1, d.Len())

	_, err = svc.SetNode(ctx, "missing", "x", true)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = svc.SetNode(ctx, "doc", "", true)
	require.ErrorIs(t, err, ErrEmptyKey)
}

func TestRemoveNode(t *testing.T) {
	svc := NewMemoryService()
	ctx := context.Background()
	_, err := svc.Create(ctx, "doc")
	require.NoError(t, err)
	_, err = svc.SetNode(ctx, "doc", "a", true)
	require.NoError(t, err)

	removed, err := svc.RemoveNode(ctx, "doc", "A")
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = svc.RemoveNode(ctx, "doc", "a")
	require.NoError(t, err)
	require.False(t, removed)

	d, err := svc.Get(ctx, "doc")
	require.NoError(t, err)
	require.Equal(t, 0, d.Len())
}

func TestGetMalformedStoredRecord(t *testing.T) {
	repo := repository.NewMemoryRepo()
	require.NoError(t, repo.Save(context.Background(), bson.M{"_id": "bad", "nodes": bson.A{bson.M{"name": "a"}}}))

	svc := New(repo)
	_, err := svc.Get(context.Background(), "bad")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}

func TestSetNodeOverRedis(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	repo := repository.NewRedisRepo(redis.NewClient(&redis.Options{Addr: m.Addr()}), "svc:")
	svc := New(repo)
	ctx := context.Background()
	_, err = svc.Create(ctx, "doc")
	require.NoError(t, err)
	_, err = svc.SetNode(ctx, "doc", "On", true)
	require.NoError(t, err)
	_, err = svc.SetNode(ctx, "doc", "off", false)
	require.NoError(t, err)

	rec, err := repo.Get(ctx, "doc")
	require.NoError(t, err)
	stored := map[string]any{}
	for _, v := range rec["nodes"].(bson.A) {
		var sub bson.M
		switch t := v.(type) {
		case bson.M:
			sub = t
		case bson.D:
			sub = bson.M{}
			for _, e := range t {
				sub[e.Key] = e.Value
			}
		}
		stored[sub["name"].(string)] = sub["flag"]
	}
	require.Equal(t, map[string]any{"on": "1", "off": "0"}, stored)
}
