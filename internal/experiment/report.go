package experiment

import (
	"fmt"
	"io"
	"strings"

	"github.com/born-ml/siamese/internal/train"
)

var separator = strings.Repeat("=", 100)

func printSeparator(w io.Writer) {
	fmt.Fprintln(w, separator)
}

func printHeader(w io.Writer, e Entry) {
	printSeparator(w)
	fmt.Fprintf(w, "\nSubnet: %s   Weight sharing: %t   Aux loss: %t\n", e.Kind, e.WeightSharing, e.AuxLoss)
}

// printFinal writes the last-epoch train and test metrics rounded to two decimals.
func printFinal(w io.Writer, h *train.History) {
	tr, te := h.Final()
	fmt.Fprintf(w, "In epoch %d, on the train set we obtain a loss of %.2f and an accuracy of %.2f\n",
		h.Epochs(), tr.Loss, tr.Accuracy)
	fmt.Fprintf(w, "In epoch %d, on the test set we obtain a loss of %.2f and an accuracy of %.2f\n",
		h.Epochs(), te.Loss, te.Accuracy)
}

func printRounds(w io.Writer, s Summary) {
	fmt.Fprintf(w, "Over %d rounds, train loss %.2f ± %.2f, accuracy %.2f ± %.2f\n",
		len(s.Histories), s.TrainLoss.Mean, s.TrainLoss.Std, s.TrainAcc.Mean, s.TrainAcc.Std)
	fmt.Fprintf(w, "Over %d rounds, test loss %.2f ± %.2f, accuracy %.2f ± %.2f\n",
		len(s.Histories), s.TestLoss.Mean, s.TestLoss.Std, s.TestAcc.Mean, s.TestAcc.Std)
}
