package store

import (
	"context"
	"encoding/json"
	"time"

	bolt "github.com/boltdb/bolt"

	"github.com/MepCity/payment-dashboard/internal/models"
)

const (
	bucketPayments  = "payments"
	bucketRefunds   = "refunds"
	bucketDisputes  = "disputes"
	bucketMerchants = "merchants"
)

// BoltStore keeps every collection as a bucket of JSON-encoded records in a
// single database file. No external database process is required.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) the database file and ensures all buckets
// exist. Bucket creation is idempotent, so this is safe on every startup.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{bucketPayments, bucketRefunds, bucketDisputes, bucketMerchants} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) put(bucket, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucket)).Put([]byte(key), data)
	})
}

// create refuses to overwrite an existing key, which makes retried creates
// with the same ID safe.
func (s *BoltStore) create(bucket, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b.Get([]byte(key)) != nil {
			return ErrAlreadyExists
		}
		return b.Put([]byte(key), data)
	})
}

func (s *BoltStore) get(bucket, key string, v interface{}) error {
	return s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucket)).Get([]byte(key))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, v)
	})
}

// Payments

// boltPayment is the on-disk form. The processor reference is hidden from
// API JSON, so it is carried explicitly here.
type boltPayment struct {
	models.Payment
	ProcessorRef string `json:"processorRef"`
}

func wrapPayment(p *models.Payment) *boltPayment {
	return &boltPayment{Payment: *p, ProcessorRef: p.ProcessorRef}
}

func (b *boltPayment) unwrap() models.Payment {
	p := b.Payment
	p.ProcessorRef = b.ProcessorRef
	return p
}

func (s *BoltStore) CreatePayment(ctx context.Context, p *models.Payment) error {
	return s.create(bucketPayments, p.PaymentID, wrapPayment(p))
}

func (s *BoltStore) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	var b boltPayment
	if err := s.get(bucketPayments, id, &b); err != nil {
		return nil, err
	}
	p := b.unwrap()
	return &p, nil
}

func (s *BoltStore) GetPaymentByTransaction(ctx context.Context, transactionID string) (*models.Payment, error) {
	var found *models.Payment
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketPayments)).ForEach(func(k, v []byte) error {
			var b boltPayment
			if err := json.Unmarshal(v, &b); err != nil {
				return err
			}
			if b.TransactionID == transactionID {
				p := b.unwrap()
				found = &p
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func (s *BoltStore) ListPayments(ctx context.Context, merchantID string) ([]models.Payment, error) {
	// Empty slice rather than nil so the JSON encoder emits [] instead of null.
	payments := []models.Payment{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketPayments)).ForEach(func(k, v []byte) error {
			var b boltPayment
			if err := json.Unmarshal(v, &b); err != nil {
				return err
			}
			if merchantID == "" || b.MerchantID == merchantID {
				payments = append(payments, b.unwrap())
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (s *BoltStore) UpdatePayment(ctx context.Context, p *models.Payment) error {
	if _, err := s.GetPayment(ctx, p.PaymentID); err != nil {
		return err
	}
	return s.put(bucketPayments, p.PaymentID, wrapPayment(p))
}

// DeletePayment is a no-op for a missing key, so retried deletes succeed.
func (s *BoltStore) DeletePayment(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketPayments)).Delete([]byte(id))
	})
}

// Refunds

func (s *BoltStore) CreateRefund(ctx context.Context, r *models.Refund) error {
	return s.create(bucketRefunds, r.RefundID, r)
}

func (s *BoltStore) ListRefundsByPayment(ctx context.Context, paymentID string) ([]models.Refund, error) {
	return s.listRefunds(func(r *models.Refund) bool { return r.PaymentID == paymentID })
}

func (s *BoltStore) ListRefunds(ctx context.Context, merchantID string) ([]models.Refund, error) {
	return s.listRefunds(func(r *models.Refund) bool {
		return merchantID == "" || r.MerchantID == merchantID
	})
}

func (s *BoltStore) listRefunds(keep func(*models.Refund) bool) ([]models.Refund, error) {
	refunds := []models.Refund{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketRefunds)).ForEach(func(k, v []byte) error {
			var r models.Refund
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			if keep(&r) {
				refunds = append(refunds, r)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return refunds, nil
}

// Disputes

func (s *BoltStore) CreateDispute(ctx context.Context, d *models.Dispute) error {
	return s.create(bucketDisputes, d.DisputeID, d)
}

func (s *BoltStore) GetDispute(ctx context.Context, id string) (*models.Dispute, error) {
	var d models.Dispute
	if err := s.get(bucketDisputes, id, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *BoltStore) UpdateDispute(ctx context.Context, d *models.Dispute) error {
	if _, err := s.GetDispute(ctx, d.DisputeID); err != nil {
		return err
	}
	return s.put(bucketDisputes, d.DisputeID, d)
}

func (s *BoltStore) ListDisputes(ctx context.Context, merchantID string) ([]models.Dispute, error) {
	disputes := []models.Dispute{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketDisputes)).ForEach(func(k, v []byte) error {
			var d models.Dispute
			if err := json.Unmarshal(v, &d); err != nil {
				return err
			}
			if merchantID == "" || d.MerchantID == merchantID {
				disputes = append(disputes, d)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return disputes, nil
}

// Merchants

// boltMerchant is the on-disk form. The API model hides the credential
// fields from JSON, so they are carried explicitly here.
type boltMerchant struct {
	models.Merchant
	PasswordHash string `json:"passwordHash"`
	APIKey       string `json:"apiKey"`
}

func wrapMerchant(m *models.Merchant) *boltMerchant {
	return &boltMerchant{Merchant: *m, PasswordHash: m.PasswordHash, APIKey: m.APIKey}
}

func (b *boltMerchant) unwrap() *models.Merchant {
	m := b.Merchant
	m.PasswordHash = b.PasswordHash
	m.APIKey = b.APIKey
	return &m
}

func (s *BoltStore) CreateMerchant(ctx context.Context, m *models.Merchant) error {
	if _, err := s.GetMerchantByEmail(ctx, m.Email); err == nil {
		return ErrAlreadyExists
	}
	return s.create(bucketMerchants, m.MerchantID, wrapMerchant(m))
}

func (s *BoltStore) GetMerchant(ctx context.Context, id string) (*models.Merchant, error) {
	var b boltMerchant
	if err := s.get(bucketMerchants, id, &b); err != nil {
		return nil, err
	}
	return b.unwrap(), nil
}

func (s *BoltStore) GetMerchantByEmail(ctx context.Context, email string) (*models.Merchant, error) {
	var found *models.Merchant
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketMerchants)).ForEach(func(k, v []byte) error {
			var b boltMerchant
			if err := json.Unmarshal(v, &b); err != nil {
				return err
			}
			if b.Email == email {
				found = b.unwrap()
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}
