package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"ecolibres-backend/app/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

var (
	repoNow   = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	routeDate = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
)

func newMockT(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func routeDoc(id primitive.ObjectID, place string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "lugarId", Value: place},
		{Key: "lugarNombre", Value: "Place " + place},
		{Key: "distancia", Value: 2.5},
		{Key: "duracion", Value: 45.0},
		{Key: "fecha", Value: routeDate},
		{Key: "completada", Value: true},
		{Key: "tipoActividad", Value: "senderismo"},
	}
}

func userDoc(uid string, routes ...bson.D) bson.D {
	arr := bson.A{}
	for _, r := range routes {
		arr = append(arr, r)
	}
	return bson.D{
		{Key: "_id", Value: uid},
		{Key: "email", Value: uid + "@example.com"},
		{Key: "rutasCompletadas", Value: arr},
	}
}

// findAndModifyResponse membungkus dokumen hasil findAndModify; nil berarti tidak ada yang cocok.
func findAndModifyResponse(doc any) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "value", Value: doc})
}

func findResponse(docs ...bson.D) bson.D {
	return mtest.CreateCursorResponse(0, mtest.TestDb+"."+UsersCollection, mtest.FirstBatch, docs...)
}

var commandError = mtest.CreateCommandErrorResponse(mtest.CommandError{
	Code:    2,
	Name:    "BadValue",
	Message: "boom",
})

func TestUserRepository_PushRoute(t *testing.T) {
	mt := newMockT(t)

	mt.Run("appends with a single findAndModify", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		route := model.CompletedRoute{
			ID:          primitive.NewObjectID(),
			PlaceID:     "p1",
			PlaceName:   "Place p1",
			CompletedAt: routeDate,
			Completed:   true,
		}
		mt.AddMockResponses(findAndModifyResponse(userDoc("u1", routeDoc(route.ID, "p1"))))

		user, err := repo.PushRoute(context.Background(), "u1", route, repoNow)
		require.NoError(mt, err)
		require.Len(mt, user.CompletedRoutes, 1)
		assert.Equal(mt, route.ID, user.CompletedRoutes[0].ID)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "findAndModify", started.CommandName)

		cmd := started.Command
		assert.Equal(mt, UsersCollection, cmd.Lookup("findAndModify").StringValue())
		assert.Equal(mt, "u1", cmd.Lookup("query", "_id").StringValue())
		assert.True(mt, cmd.Lookup("new").Boolean())
		assert.Equal(mt, "p1", cmd.Lookup("update", "$push", "rutasCompletadas", "lugarId").StringValue())
		assert.Equal(mt, route.ID, cmd.Lookup("update", "$push", "rutasCompletadas", "_id").ObjectID())

		updatedAt := cmd.Lookup("update", "$set", "updatedAt").Time()
		assert.True(mt, repoNow.Equal(updatedAt), "updatedAt = %v", updatedAt)
		assert.Nil(mt, mt.GetStartedEvent())
	})

	mt.Run("unknown user", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(findAndModifyResponse(nil))

		user, err := repo.PushRoute(context.Background(), "ghost", model.CompletedRoute{ID: primitive.NewObjectID()}, repoNow)
		assert.Nil(mt, user)
		assert.ErrorIs(mt, err, ErrUserNotFound)
	})

	mt.Run("driver error passes through", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(commandError)

		_, err := repo.PushRoute(context.Background(), "u1", model.CompletedRoute{ID: primitive.NewObjectID()}, repoNow)
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, ErrUserNotFound)

		var cmdErr mongo.CommandError
		require.True(mt, errors.As(err, &cmdErr))
		assert.Equal(mt, int32(2), cmdErr.Code)
	})
}

func TestUserRepository_PullRoute(t *testing.T) {
	mt := newMockT(t)
	keep := primitive.NewObjectID()
	target := primitive.NewObjectID()

	mt.Run("removes exactly the matching route", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(findAndModifyResponse(userDoc("u1", routeDoc(keep, "p1"))))

		user, err := repo.PullRoute(context.Background(), "u1", target)
		require.NoError(mt, err)
		require.Len(mt, user.CompletedRoutes, 1)
		assert.Equal(mt, keep, user.CompletedRoutes[0].ID)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, "u1", cmd.Lookup("query", "_id").StringValue())
		assert.Equal(mt, target, cmd.Lookup("query", "rutasCompletadas._id").ObjectID())
		assert.Equal(mt, target, cmd.Lookup("update", "$pull", "rutasCompletadas", "_id").ObjectID())
		assert.Nil(mt, mt.GetStartedEvent())
	})

	mt.Run("route missing on existing user", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(
			findAndModifyResponse(nil),
			findResponse(userDoc("u1", routeDoc(keep, "p1"))),
		)

		user, err := repo.PullRoute(context.Background(), "u1", target)
		assert.Nil(mt, user)
		assert.ErrorIs(mt, err, ErrRouteNotFound)

		assert.Equal(mt, "findAndModify", mt.GetStartedEvent().CommandName)
		lookup := mt.GetStartedEvent()
		require.NotNil(mt, lookup)
		assert.Equal(mt, "find", lookup.CommandName)
		assert.Equal(mt, "u1", lookup.Command.Lookup("filter", "_id").StringValue())
	})

	mt.Run("user missing", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(findAndModifyResponse(nil), findResponse())

		_, err := repo.PullRoute(context.Background(), "ghost", target)
		assert.ErrorIs(mt, err, ErrUserNotFound)
		assert.NotErrorIs(mt, err, ErrRouteNotFound)
	})

	mt.Run("driver error passes through", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(commandError)

		_, err := repo.PullRoute(context.Background(), "u1", target)
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, ErrRouteNotFound)
		assert.NotErrorIs(mt, err, ErrUserNotFound)

		assert.Equal(mt, "findAndModify", mt.GetStartedEvent().CommandName)
		assert.Nil(mt, mt.GetStartedEvent())
	})
}

func TestUserRepository_FindByUID(t *testing.T) {
	mt := newMockT(t)

	mt.Run("decodes legacy document", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		legacy := bson.D{
			{Key: "_id", Value: "u1"},
			{Key: "email", Value: "u1@example.com"},
			{Key: "logros", Value: bson.A{
				bson.D{{Key: "id", Value: "walker"}, {Key: "nombre", Value: "Walker"}, {Key: "progreso", Value: 10.0}},
			}},
		}
		mt.AddMockResponses(findResponse(legacy))

		user, err := repo.FindByUID(context.Background(), "u1")
		require.NoError(mt, err)
		require.Len(mt, user.Achievements, 1)
		assert.InDelta(mt, float64(model.DefaultAchievementGoal), user.Achievements[0].Goal, 1e-9)
		assert.NotNil(mt, user.CompletedRoutes)
		assert.Empty(mt, user.CompletedRoutes)
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(findResponse())

		_, err := repo.FindByUID(context.Background(), "ghost")
		assert.ErrorIs(mt, err, ErrUserNotFound)
	})

	mt.Run("driver error passes through", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(commandError)

		_, err := repo.FindByUID(context.Background(), "u1")
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, ErrUserNotFound)
	})
}

func TestUserRepository_ReplaceAchievements(t *testing.T) {
	mt := newMockT(t)

	mt.Run("sets logros and timestamps", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(findAndModifyResponse(userDoc("u1")))

		_, err := repo.ReplaceAchievements(context.Background(), "u1", nil, repoNow)
		require.NoError(mt, err)

		cmd := mt.GetStartedEvent().Command
		logros, ok := cmd.Lookup("update", "$set", "logros").ArrayOK()
		require.True(mt, ok, "logros must be sent as an array")
		values, err := logros.Values()
		require.NoError(mt, err)
		assert.Empty(mt, values)
		assert.True(mt, repoNow.Equal(cmd.Lookup("update", "$set", "ultimaConexion").Time()))
	})

	mt.Run("unknown user", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(findAndModifyResponse(nil))

		_, err := repo.ReplaceAchievements(context.Background(), "ghost", nil, repoNow)
		assert.ErrorIs(mt, err, ErrUserNotFound)
	})
}

func TestUserRepository_UpdateMatchedNothing(t *testing.T) {
	mt := newMockT(t)
	noMatch := mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0})

	mt.Run("profile", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(noMatch)

		err := repo.UpdateProfile(context.Background(), "ghost", ProfileUpdate{Email: "g@example.com", LastSeenAt: repoNow})
		assert.ErrorIs(mt, err, ErrUserNotFound)
	})

	mt.Run("achievements", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(noMatch)

		err := repo.SetAchievements(context.Background(), "ghost", nil, repoNow)
		assert.ErrorIs(mt, err, ErrUserNotFound)
	})

	mt.Run("matched", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		err := repo.SetAchievements(context.Background(), "u1", []model.Achievement{{ID: "walker", Goal: 100}}, repoNow)
		assert.NoError(mt, err)
	})
}
