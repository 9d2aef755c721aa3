package receipt_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/zombor/receipt-processor/internal/metrics"
	"github.com/zombor/receipt-processor/internal/receipt"
)

const cornerMarketJSON = `{
  "retailer": "M&M Corner Market",
  "purchaseDate": "2022-03-20",
  "purchaseTime": "14:33",
  "items": [
    {"shortDescription": "Gatorade", "price": "2.25"},
    {"shortDescription": "Gatorade", "price": "2.25"},
    {"shortDescription": "Gatorade", "price": "2.25"},
    {"shortDescription": "Gatorade", "price": "2.25"}
  ],
  "total": "9.00"
}`

var _ = Describe("Integration", func() {
	for _, store := range []string{"memory", "bolt", "pebble"} {
		store := store

		Describe(fmt.Sprintf("with the %s store", store), func() {
			var (
				db       receipt.DB
				ghServer *ghttp.Server
			)

			BeforeEach(func() {
				dir := GinkgoT().TempDir()
				var err error
				switch store {
				case "memory":
					db = receipt.NewMemoryDB()
				case "bolt":
					db, err = receipt.NewBoltDB(filepath.Join(dir, "test.db"))
				case "pebble":
					db, err = receipt.NewPebbleDB(filepath.Join(dir, "pebble"))
				}
				Expect(err).NotTo(HaveOccurred())

				service := receipt.NewService(db, receipt.PriceTolerant)
				server := receipt.NewServer(service, metrics.NewRegistry())

				ghServer = ghttp.NewServer()
				ghServer.AppendHandlers(server.ServeHTTP, server.ServeHTTP, server.ServeHTTP)
			})

			AfterEach(func() {
				if ghServer != nil {
					ghServer.Close()
				}
				if db != nil {
					db.Close()
				}
			})

			It("should score a submitted receipt the same as scoring it directly", func() {
				// --- Step 1: submit ---
				resp, err := http.Post(ghServer.URL()+"/receipts/process", "application/json", strings.NewReader(cornerMarketJSON))
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusOK))

				var created map[string]string
				body, err := io.ReadAll(resp.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(json.Unmarshal(body, &created)).To(Succeed())
				Expect(created["id"]).NotTo(BeEmpty())

				// --- Step 2: query points ---
				pointsResp, err := http.Get(ghServer.URL() + "/receipts/" + created["id"] + "/points")
				Expect(err).NotTo(HaveOccurred())
				defer pointsResp.Body.Close()
				Expect(pointsResp.StatusCode).To(Equal(http.StatusOK))

				var points map[string]int
				body, err = io.ReadAll(pointsResp.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(json.Unmarshal(body, &points)).To(Succeed())
				Expect(points["points"]).To(Equal(109))

				// --- Step 3: compare with direct scoring ---
				var req receipt.ProcessRequest
				Expect(json.Unmarshal([]byte(cornerMarketJSON), &req)).To(Succeed())
				direct, err := req.ToReceipt()
				Expect(err).NotTo(HaveOccurred())
				Expect(receipt.NormalizeReceipt(direct, receipt.PriceTolerant)).To(Succeed())
				Expect(points["points"]).To(Equal(receipt.CalculatePoints(direct)))

				stored, err := db.GetReceipt(created["id"])
				Expect(err).NotTo(HaveOccurred())
				Expect(stored.Retailer).To(Equal("M&M Corner Market"))
			})

			It("should give distinct IDs to identical submissions", func() {
				ids := map[string]bool{}
				for i := 0; i < 2; i++ {
					resp, err := http.Post(ghServer.URL()+"/receipts/process", "application/json", strings.NewReader(cornerMarketJSON))
					Expect(err).NotTo(HaveOccurred())
					var created map[string]string
					Expect(json.NewDecoder(resp.Body).Decode(&created)).To(Succeed())
					resp.Body.Close()
					ids[created["id"]] = true
				}
				Expect(ids).To(HaveLen(2))
			})
		})
	}
})
