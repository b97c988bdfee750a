package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestClassLoweredIncrementsByVersion(t *testing.T) {
	m := NewMetrics()

	before := testutil.ToFloat64(classesLoweredTotal.WithLabelValues("2023-05"))
	m.ClassLowered("2023-05")
	after := testutil.ToFloat64(classesLoweredTotal.WithLabelValues("2023-05"))

	if after != before+1 {
		t.Fatalf("classes_lowered_total{version=\"2023-05\"} = %v, want %v", after, before+1)
	}
}

func TestElementLoweredIncrementsByKind(t *testing.T) {
	m := NewMetrics()

	before := testutil.ToFloat64(elementsLoweredTotal.WithLabelValues("field"))
	m.ElementLowered("field")
	after := testutil.ToFloat64(elementsLoweredTotal.WithLabelValues("field"))

	if after != before+1 {
		t.Fatalf("elements_lowered_total{kind=\"field\"} = %v, want %v", after, before+1)
	}
}

func TestFatalDiagnosticIncrementsByVersion(t *testing.T) {
	m := NewMetrics()

	before := testutil.ToFloat64(fatalDiagnosticsTotal.WithLabelValues("2021-12"))
	m.FatalDiagnostic("2021-12")
	after := testutil.ToFloat64(fatalDiagnosticsTotal.WithLabelValues("2021-12"))

	if after != before+1 {
		t.Fatalf("fatal_diagnostics_total{version=\"2021-12\"} = %v, want %v", after, before+1)
	}
}

func TestObservePhaseRecordsASample(t *testing.T) {
	m := NewMetrics()

	before := testutil.CollectAndCount(phaseDurationSeconds)
	stop := m.ObservePhase("survey")
	stop()
	after := testutil.CollectAndCount(phaseDurationSeconds)

	if after <= before {
		t.Fatalf("ObservePhase did not record a new histogram sample: before=%d after=%d", before, after)
	}
}
