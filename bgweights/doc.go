/*
Command bgweights computes background state weights from predicted labels.

It is an offline companion to nicerbgml.  Given the state labels predicted
for the time bins of an observation, it prints the weight table and the
mathpha expression that nicerbgml would use, without running any HEASoft
tool.

  Usage: bgweights [options] <labels>
    -c=0: column containing the label
    -digits=4: significant digits of weights in the expression
    -v=false: display version and copyright

The labels file is text, one time bin per line, with fields separated by
white space.  The label is the zero-based state index the classifier
predicts; basis spectrum spec.<label+1>.pha corresponds to it.  Lines where
the selected column is missing or is not a non-negative integer are
ignored and counted.

Use -digits=6 to match nicerbgml2.

Sample output:

  Labels read:        6
  Lines ignored:      1

  class    weight
      1  0.333333
      2  0.166667
      3  0.500000

  0.3333*spec.1.pha+0.1667*spec.2.pha+ 0.5*spec.3.pha
*/
package main
