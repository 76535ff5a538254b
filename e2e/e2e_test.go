package e2e

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	coremetrics "github.com/fieldwise/aquaplan/core/metrics"
	"github.com/fieldwise/aquaplan/core/model"
	"github.com/fieldwise/aquaplan/infra/metrics"
)

// junitReport is a minimal representation of a JUnit XML report. The E2E
// suite writes such a report so CI systems can display the results.
type junitReport struct {
	XMLName  xml.Name        `xml:"testsuite"`
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Cases    []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name    string  `xml:"name,attr"`
	Failure *string `xml:"failure,omitempty"`
	Time    float64 `xml:"time,attr"`
}

// writeJUnit writes the provided report to the given path.
func writeJUnit(path string, rep junitReport) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	return enc.Encode(rep)
}

// startInflux starts an InfluxDB 2.7 container and returns it along with the
// base URL. The container is left running until the context is cancelled.
func startInflux(ctx context.Context, t *testing.T) (tc.Container, string) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "influxdb:2.7",
		ExposedPorts: []string{"8086/tcp"},
		WaitingFor:   wait.ForHTTP("/health").WithPort("8086/tcp").WithStartupTimeout(60 * time.Second),
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("unable to start influx container: %v", err)
	}
	host, _ := cont.Host(ctx)
	port, _ := cont.MappedPort(ctx, "8086")
	url := fmt.Sprintf("http://%s:%s", host, port.Port())
	return cont, url
}

// Test_E2E_AllocationExport runs the InfluxDB sink against a real instance:
// it records a plan run's allocations and reads them back with a Flux query.
func Test_E2E_AllocationExport(t *testing.T) {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skipf("docker not installed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	influxCont, influxURL := startInflux(ctx, t)
	if influxCont != nil {
		defer influxCont.Terminate(ctx) //nolint:errcheck
	}
	t.Logf("InfluxDB started at %s", influxURL)

	org := "e2e_org"
	bucket := "e2e_bucket"
	token := "e2e-token"
	cli := NewInfluxClient(influxURL, org, bucket, token)
	defer cli.Close()
	if err := cli.SetupBucket(ctx); err != nil {
		t.Fatalf("setup bucket: %v", err)
	}

	sink := metrics.NewInfluxSink(influxURL, token, org, bucket)
	now := time.Now()
	recs := []coremetrics.AllocationRecord{
		{RunID: "run-e2e", ParcelID: "north-field", Crop: model.CropCorn, Day: 0, AppliedMM: 5, MoistureMM: 47, Time: now},
		{RunID: "run-e2e", ParcelID: "north-field", Crop: model.CropCorn, Day: 1, AppliedMM: 3, MoistureMM: 48, Reduced: true, Time: now},
		{RunID: "run-e2e", ParcelID: "south-field", Crop: model.CropWheat, Day: 0, AppliedMM: 2, MoistureMM: 40, Time: now},
	}
	if err := sink.RecordAllocations(recs); err != nil {
		t.Fatalf("record allocations: %v", err)
	}

	flux := fmt.Sprintf(`from(bucket:"%s") |> range(start:-5m)
		|> filter(fn: (r) => r._measurement == "irrigation_allocation")`, bucket)
	res, err := cli.Query(ctx, flux)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer res.Close()
	parcels := map[string]bool{}
	for res.Next() {
		if id, ok := res.Record().ValueByKey("parcel_id").(string); ok {
			parcels[id] = true
		}
	}
	if err := res.Err(); err != nil {
		t.Fatalf("iterate: %v", err)
	}
	if !parcels["north-field"] || !parcels["south-field"] {
		t.Fatalf("allocation points missing, saw %v", parcels)
	}

	dir := t.TempDir()
	rep := junitReport{Name: "e2e", Tests: 1, Cases: []junitTestCase{{Name: "Test_E2E_AllocationExport", Time: 0}}}
	if err := writeJUnit(filepath.Join(dir, "e2e.xml"), rep); err != nil {
		t.Logf("write junit: %v", err)
	}
}
