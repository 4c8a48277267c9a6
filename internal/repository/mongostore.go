package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"livetodo/internal/model"
)

type MongoStore struct {
	client  *mongo.Client
	db      string
	coll    string
	timeout time.Duration
}

func NewMongoStore(uri, db, coll string) (*MongoStore, error) {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	return &MongoStore{
		client:  client,
		db:      db,
		coll:    coll,
		timeout: 5 * time.Second,
	}, nil
}

type taskDoc struct {
	ID        model.ID  `bson:"_id"`
	Title     string    `bson:"title"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (d taskDoc) toDTO() model.TaskDTO {
	return model.TaskDTO{
		ID:        d.ID,
		Title:     d.Title,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func dtoToDoc(t model.TaskDTO) taskDoc {
	return taskDoc{
		ID:        t.ID,
		Title:     t.Title,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func (s *MongoStore) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

func (s *MongoStore) col() *mongo.Collection {
	return s.client.Database(s.db).Collection(s.coll)
}

func (s *MongoStore) List() ([]*model.Task, error) {
	ctx, cancel := s.ctx()
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.col().Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var tasks []*model.Task
	for cur.Next(ctx) {
		var d taskDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		t, err := model.FromDTO(d.toDTO())
		if err != nil {
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, cur.Err()
}

func (s *MongoStore) Get(id model.ID) (*model.Task, error) {
	ctx, cancel := s.ctx()
	defer cancel()

	var d taskDoc
	err := s.col().FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errNotFound(id)
	}
	if err != nil {
		return nil, err
	}
	return model.FromDTO(d.toDTO())
}

// nextID — у монги нет автоинкремента, берём максимум + 1.
// Для учебного однопроцессного приложения этого хватает.
func (s *MongoStore) nextID(ctx context.Context) (model.ID, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}})
	var d taskDoc
	err := s.col().FindOne(ctx, bson.D{}, opts).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return d.ID + 1, nil
}

func (s *MongoStore) Create(title string) (*model.Task, error) {
	t, err := model.NewTask(title)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.ctx()
	defer cancel()

	id, err := s.nextID(ctx)
	if err != nil {
		return nil, err
	}
	t.SetID(id)
	if _, err := s.col().InsertOne(ctx, dtoToDoc(t.ToDTO())); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *MongoStore) Save(t *model.Task) error {
	ctx, cancel := s.ctx()
	defer cancel()

	res, err := s.col().ReplaceOne(ctx, bson.D{{Key: "_id", Value: t.ID()}}, dtoToDoc(t.ToDTO()))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errNotFound(t.ID())
	}
	return nil
}

func (s *MongoStore) Delete(id model.ID) error {
	ctx, cancel := s.ctx()
	defer cancel()

	res, err := s.col().DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return errNotFound(id)
	}
	return nil
}
