package mongo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hrdashboard/hr-api/internal/core/domain"
	"github.com/hrdashboard/hr-api/internal/core/ports"
)

const collectionAccounts = "employees"

// AccountRepository implements ports.AccountRepository using MongoDB.
type AccountRepository struct {
	col *mongo.Collection
}

var _ ports.AccountRepository = (*AccountRepository)(nil)

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{col: db.Collection(collectionAccounts)}
}

type mongoAccount struct {
	ID               primitive.ObjectID       `bson:"_id,omitempty"`
	EmployeeID       string                   `bson:"employee_id"`
	Email            string                   `bson:"email"`
	PasswordHash     string                   `bson:"password_hash"`
	FirstName        string                   `bson:"first_name"`
	LastName         string                   `bson:"last_name"`
	Role             string                   `bson:"role"`
	Status           string                   `bson:"status"`
	ManagerID        *primitive.ObjectID      `bson:"manager_id,omitempty"`
	Department       string                   `bson:"department,omitempty"`
	Position         string                   `bson:"position"`
	DateOfJoining    time.Time                `bson:"date_of_joining"`
	DateOfBirth      *time.Time               `bson:"date_of_birth,omitempty"`
	Phone            string                   `bson:"phone,omitempty"`
	Address          *domain.Address          `bson:"address,omitempty"`
	EmergencyContact *domain.EmergencyContact `bson:"emergency_contact,omitempty"`
	Salary           *domain.Salary           `bson:"salary,omitempty"`
	BankDetails      *domain.BankDetails      `bson:"bank_details,omitempty"`
	OnboardingStatus string                   `bson:"onboarding_status"`
	CreatedAt        time.Time                `bson:"created_at"`
	UpdatedAt        time.Time                `bson:"updated_at"`
}

func toMongoAccount(a *domain.Account) (*mongoAccount, error) {
	doc := &mongoAccount{
		EmployeeID:       a.EmployeeID,
		Email:            a.Email,
		PasswordHash:     a.PasswordHash,
		FirstName:        a.FirstName,
		LastName:         a.LastName,
		Role:             string(a.Role),
		Status:           string(a.Status),
		Department:       a.Department,
		Position:         a.Position,
		DateOfJoining:    a.DateOfJoining,
		DateOfBirth:      a.DateOfBirth,
		Phone:            a.Phone,
		Address:          a.Address,
		EmergencyContact: a.EmergencyContact,
		Salary:           a.Salary,
		BankDetails:      a.BankDetails,
		OnboardingStatus: string(a.OnboardingStatus),
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
	if a.ManagerID != "" {
		oid, err := primitive.ObjectIDFromHex(a.ManagerID)
		if err != nil {
			return nil, domain.NewValidationError(domain.FieldError{Field: "manager", Message: "manager must reference an existing account"})
		}
		doc.ManagerID = &oid
	}
	return doc, nil
}

func (m *mongoAccount) toDomain() *domain.Account {
	a := &domain.Account{
		ID:               m.ID.Hex(),
		EmployeeID:       m.EmployeeID,
		Email:            m.Email,
		PasswordHash:     m.PasswordHash,
		FirstName:        m.FirstName,
		LastName:         m.LastName,
		Role:             domain.Role(m.Role),
		Status:           domain.AccountStatus(m.Status),
		Department:       m.Department,
		Position:         m.Position,
		DateOfJoining:    m.DateOfJoining.UTC(),
		DateOfBirth:      m.DateOfBirth,
		Phone:            m.Phone,
		Address:          m.Address,
		EmergencyContact: m.EmergencyContact,
		Salary:           m.Salary,
		BankDetails:      m.BankDetails,
		OnboardingStatus: domain.OnboardingStatus(m.OnboardingStatus),
		CreatedAt:        m.CreatedAt.UTC(),
		UpdatedAt:        m.UpdatedAt.UTC(),
	}
	if m.ManagerID != nil {
		a.ManagerID = m.ManagerID.Hex()
	}
	return a
}

// Count returns the number of stored accounts regardless of status.
func (r *AccountRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return n, nil
}

// Create inserts a new account. The unique indexes on email and employee_id
// turn a concurrent duplicate into domain.ErrDuplicateAccount.
func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := toMongoAccount(a)
	if err != nil {
		return nil, err
	}
	doc.ID = primitive.NewObjectID()

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateAccount
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return doc.toDomain(), nil
}

// FindByID looks an account up by its hex id. Malformed ids are reported as
// not found.
func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": domain.NormalizeEmail(email)})
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoAccount
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *AccountRepository) ExistsByEmailOrEmployeeID(ctx context.Context, email, employeeID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"$or": bson.A{
		bson.M{"email": domain.NormalizeEmail(email)},
		bson.M{"employee_id": employeeID},
	}}
	n, err := r.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check account exists: %w", err)
	}
	return n > 0, nil
}

// Update applies every non-nil field of upd in one FindOneAndUpdate and
// returns the document as stored afterwards.
func (r *AccountRepository) Update(ctx context.Context, id string, upd ports.AccountUpdate) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	unset := bson.M{}
	setString := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}
	setString("first_name", upd.FirstName)
	setString("last_name", upd.LastName)
	setString("phone", upd.Phone)
	setString("position", upd.Position)
	setString("department", upd.Department)
	if upd.DateOfBirth != nil {
		set["date_of_birth"] = upd.DateOfBirth.UTC()
	}
	if upd.Address != nil {
		set["address"] = upd.Address
	}
	if upd.EmergencyContact != nil {
		set["emergency_contact"] = upd.EmergencyContact
	}
	if upd.ManagerID != nil {
		if *upd.ManagerID == "" {
			unset["manager_id"] = ""
		} else {
			mid, err := primitive.ObjectIDFromHex(*upd.ManagerID)
			if err != nil {
				return nil, domain.NewValidationError(domain.FieldError{Field: "manager", Message: "manager must reference an existing account"})
			}
			set["manager_id"] = mid
		}
	}
	if upd.Role != nil {
		set["role"] = string(*upd.Role)
	}
	if upd.Status != nil {
		set["status"] = string(*upd.Status)
	}
	if upd.Salary != nil {
		set["salary"] = upd.Salary
	}
	if upd.BankDetails != nil {
		set["bank_details"] = upd.BankDetails
	}
	if upd.OnboardingStatus != nil {
		set["onboarding_status"] = string(*upd.OnboardingStatus)
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoAccount
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("update account: %w", err)
	}
	return doc.toDomain(), nil
}

// UpdatePassword replaces the stored hash in a single write.
func (r *AccountRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.updateFields(ctx, id, bson.M{"password_hash": passwordHash})
}

func (r *AccountRepository) SetStatus(ctx context.Context, id string, status domain.AccountStatus) error {
	return r.updateFields(ctx, id, bson.M{"status": string(status)})
}

func (r *AccountRepository) updateFields(ctx context.Context, id string, fields bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrAccountNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	fields["updated_at"] = time.Now().UTC()
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// List returns a page of accounts sorted by newest first together with the
// total number of matches.
func (r *AccountRepository) List(ctx context.Context, f ports.AccountFilter) ([]*domain.Account, int64, error) {
	filter := bson.M{}
	if f.ManagerID != "" {
		mid, err := primitive.ObjectIDFromHex(f.ManagerID)
		if err != nil {
			return []*domain.Account{}, 0, nil
		}
		filter["manager_id"] = mid
	}
	if f.Department != "" {
		filter["department"] = f.Department
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"first_name": re},
			bson.M{"last_name": re},
			bson.M{"email": re},
			bson.M{"employee_id": re},
			bson.M{"position": re},
		}
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}

	skip, ok := pageSkip(f.Page, f.Limit)
	if !ok {
		return []*domain.Account{}, total, nil
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(int64(f.Limit))
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoAccount
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode accounts: %w", err)
	}

	out := make([]*domain.Account, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, total, nil
}

// pageSkip returns the number of documents before page. ok is false when the
// offset cannot be represented, which callers treat as a page past the end.
func pageSkip(page, limit int) (skip int64, ok bool) {
	if page <= 1 || limit < 1 {
		return 0, true
	}
	p, l := int64(page-1), int64(limit)
	if p > math.MaxInt64/l {
		return 0, false
	}
	return p * l, true
}

// EnsureIndexes creates the unique and lookup indexes on the accounts collection.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "employee_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "manager_id", Value: 1}}},
		{Keys: bson.D{{Key: "department", Value: 1}, {Key: "status", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
