package receipt

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// describeDB runs the DB contract against the store returned by open
func describeDB(name string, open func(dir string) (DB, error)) {
	Describe(name, func() {
		var db DB

		BeforeEach(func() {
			var err error
			db, err = open(GinkgoT().TempDir())
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			if db != nil {
				db.Close()
			}
		})

		Describe("SaveReceipt", func() {
			var (
				receipt *Receipt
				err     error
			)

			BeforeEach(func() {
				receipt = cornerMarketReceipt()
				receipt.ID = "test-id"
				receipt.CreatedAt = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
			})

			JustBeforeEach(func() {
				err = db.SaveReceipt(receipt)
			})

			When("saving succeeds", func() {
				It("should not return an error", func() {
					Expect(err).NotTo(HaveOccurred())
				})

				It("should save the receipt to the database", func() {
					saved, getErr := db.GetReceipt("test-id")
					Expect(getErr).NotTo(HaveOccurred())
					Expect(saved.ID).To(Equal("test-id"))
				})

				It("should preserve every field", func() {
					saved, getErr := db.GetReceipt("test-id")
					Expect(getErr).NotTo(HaveOccurred())
					Expect(saved.Retailer).To(Equal(receipt.Retailer))
					Expect(saved.PurchaseDate).To(Equal(receipt.PurchaseDate))
					Expect(saved.PurchaseTime).To(Equal(receipt.PurchaseTime))
					Expect(saved.Items).To(Equal(receipt.Items))
					Expect(saved.Total).To(Equal(receipt.Total))
					Expect(saved.CreatedAt.Equal(receipt.CreatedAt)).To(BeTrue())
				})
			})

			When("the ID is already stored", func() {
				BeforeEach(func() {
					existing := targetReceipt()
					existing.ID = "test-id"
					Expect(db.SaveReceipt(existing)).To(Succeed())
				})

				It("returns an already exists error", func() {
					Expect(err).To(MatchError(ErrReceiptExists))
				})

				It("keeps the original receipt", func() {
					saved, getErr := db.GetReceipt("test-id")
					Expect(getErr).NotTo(HaveOccurred())
					Expect(saved.Retailer).To(Equal("Target"))
				})
			})
		})

		Describe("GetReceipt", func() {
			When("receipt does not exist", func() {
				It("returns a not found error", func() {
					_, err := db.GetReceipt("nonexistent")
					Expect(err).To(MatchError(ErrReceiptNotFound))
					Expect(err).To(MatchError("receipt not found: nonexistent"))
				})
			})
		})

		Describe("ListReceipts", func() {
			When("receipts exist", func() {
				BeforeEach(func() {
					for _, id := range []string{"id2", "id1"} {
						r := targetReceipt()
						r.ID = id
						Expect(db.SaveReceipt(r)).To(Succeed())
					}
				})

				It("should return all receipts in ID order", func() {
					receipts, err := db.ListReceipts()
					Expect(err).NotTo(HaveOccurred())
					Expect(receipts).To(HaveLen(2))
					Expect(receipts[0].ID).To(Equal("id1"))
					Expect(receipts[1].ID).To(Equal("id2"))
				})
			})

			When("no receipts exist", func() {
				It("should return an empty list", func() {
					receipts, err := db.ListReceipts()
					Expect(err).NotTo(HaveOccurred())
					Expect(receipts).To(BeEmpty())
				})
			})
		})

		Describe("concurrent use", func() {
			It("should store every receipt saved in parallel", func() {
				var wg sync.WaitGroup
				errs := make(chan error, 20)
				for i := 0; i < 20; i++ {
					wg.Add(1)
					go func(i int) {
						defer GinkgoRecover()
						defer wg.Done()
						r := targetReceipt()
						r.ID = fmt.Sprintf("id-%02d", i)
						errs <- db.SaveReceipt(r)
						_, _ = db.GetReceipt(r.ID)
					}(i)
				}
				wg.Wait()
				close(errs)
				for err := range errs {
					Expect(err).NotTo(HaveOccurred())
				}

				receipts, err := db.ListReceipts()
				Expect(err).NotTo(HaveOccurred())
				Expect(receipts).To(HaveLen(20))
			})

			It("should accept only one of two saves with the same ID", func() {
				var wg sync.WaitGroup
				errs := make(chan error, 2)
				for i := 0; i < 2; i++ {
					wg.Add(1)
					go func() {
						defer GinkgoRecover()
						defer wg.Done()
						r := targetReceipt()
						r.ID = "dup"
						errs <- db.SaveReceipt(r)
					}()
				}
				wg.Wait()
				close(errs)

				var failures int
				for err := range errs {
					if err != nil {
						Expect(errors.Is(err, ErrReceiptExists)).To(BeTrue())
						failures++
					}
				}
				Expect(failures).To(Equal(1))
			})
		})
	})
}

var _ = Describe("DB implementations", func() {
	describeDB("MemoryDB", func(string) (DB, error) {
		return NewMemoryDB(), nil
	})

	describeDB("BoltDB", func(dir string) (DB, error) {
		return NewBoltDB(filepath.Join(dir, "test.db"))
	})

	describeDB("PebbleDB", func(dir string) (DB, error) {
		return NewPebbleDB(filepath.Join(dir, "pebble"))
	})
})

var _ = Describe("MemoryDB", func() {
	It("should not share items with callers", func() {
		db := NewMemoryDB()
		r := targetReceipt()
		r.ID = "id"
		Expect(db.SaveReceipt(r)).To(Succeed())

		r.Items[0].Price = "0.00"
		saved, err := db.GetReceipt("id")
		Expect(err).NotTo(HaveOccurred())
		Expect(saved.Items[0].Price).To(Equal("6.49"))
	})
})

var _ = Describe("BoltDB", func() {
	It("should keep receipts across reopen", func() {
		path := filepath.Join(GinkgoT().TempDir(), "test.db")
		db, err := NewBoltDB(path)
		Expect(err).NotTo(HaveOccurred())
		r := targetReceipt()
		r.ID = "persisted"
		Expect(db.SaveReceipt(r)).To(Succeed())
		Expect(db.Close()).To(Succeed())

		db, err = NewBoltDB(path)
		Expect(err).NotTo(HaveOccurred())
		defer db.Close()
		saved, err := db.GetReceipt("persisted")
		Expect(err).NotTo(HaveOccurred())
		Expect(saved.Retailer).To(Equal("Target"))
	})
})
